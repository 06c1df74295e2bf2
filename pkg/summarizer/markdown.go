package summarizer

import (
	"fmt"
	"strings"
	"time"
)

// MarkdownFormatter renders a Summary as a Markdown document.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator sets the function used to translate labels.
func WithTranslator(fn func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.translate = fn
	}
}

// WithVersion adds the tool version to the footer.
func WithVersion(v string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = v
	}
}

// NewMarkdownFormatter creates a MarkdownFormatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{translate: func(s string) string { return s }}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t("Recording Summary"))

	fmt.Fprintf(&b, "## %s\n\n", t("Source"))
	row(&b, t("Source"), s.Source.Kind)
	if s.Source.Detail != "" {
		row(&b, t("Target"), s.Source.Detail)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## %s\n\n", t("Session"))
	if s.Session.ID != "" {
		row(&b, t("Session ID"), "`"+s.Session.ID+"`")
	}
	if !s.Session.StartedAt.IsZero() {
		row(&b, t("Started At"), s.Session.StartedAt.Format(time.RFC3339))
	}
	row(&b, t("Duration"), fmt.Sprintf("%d ms", s.Session.DurationMs))
	row(&b, t("Stop Reason"), t(stopReasonLabel(s.Session.StopReason)))
	if s.Session.Error != "" {
		row(&b, t("Error"), s.Session.Error)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## %s\n\n", t("Settings"))
	if s.Settings.Width > 0 && s.Settings.Height > 0 {
		row(&b, t("Resolution"), fmt.Sprintf("%dx%d", s.Settings.Width, s.Settings.Height))
	}
	if s.Settings.FPS > 0 {
		row(&b, t("Frame Rate"), fmt.Sprintf("%d fps", s.Settings.FPS))
	}
	if s.Settings.Codec != "" {
		row(&b, t("Codec"), s.Settings.Codec)
	}
	if s.Settings.Quality != "" {
		row(&b, t("Quality"), s.Settings.Quality)
	}
	if s.Settings.CRF > 0 {
		row(&b, "CRF", fmt.Sprintf("%d", s.Settings.CRF))
	}
	if s.Settings.Preset != "" {
		row(&b, t("Encoder Preset"), s.Settings.Preset)
	}
	if s.Settings.TimestampMode != "" {
		row(&b, t("Timestamps"), s.Settings.TimestampMode)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## %s\n\n", t("Video"))
	if s.Video.Path != "" {
		row(&b, t("Output"), s.Video.Path)
	}
	row(&b, t("Frames Captured"), fmt.Sprintf("%d", s.Video.FramesReceived))
	row(&b, t("Frames Encoded"), fmt.Sprintf("%d", s.Video.FramesEncoded))
	if s.Video.FramesSkipped > 0 {
		row(&b, t("Frames Skipped"), fmt.Sprintf("%d", s.Video.FramesSkipped))
	}
	row(&b, t("Video Duration"), fmt.Sprintf("%d ms", s.Video.DurationMs))
	row(&b, t("Effective Capture Rate"), fmt.Sprintf("%.1f fps", s.Video.EffectiveFPS))
	if s.Video.FileSize > 0 {
		row(&b, t("File Size"), formatBytes(s.Video.FileSize))
	}

	if len(s.Warnings) > 0 {
		fmt.Fprintf(&b, "\n## %s\n\n", t("Warnings"))
		for _, w := range s.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	b.WriteString("\n---\n\n")
	footer := fmt.Sprintf("%s %s", t("Generated at"), s.GeneratedAt.Format(time.RFC3339))
	if f.version != "" {
		footer += fmt.Sprintf(" (screenrec %s)", f.version)
	}
	b.WriteString(footer + "\n")

	return b.String()
}

func row(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "- **%s**: %s\n", label, value)
}

func stopReasonLabel(reason string) string {
	switch reason {
	case "target_reached":
		return "Target frame count reached"
	case "timeout":
		return "Timeout"
	case "external":
		return "Stopped by user"
	case "cancelled":
		return "Cancelled"
	case "source_ended":
		return "Capture source ended"
	case "encode_failed":
		return "Encoding failed"
	case "":
		return "N/A"
	default:
		return reason
	}
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 2; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "KMG"[exp])
}

var _ Formatter = (*MarkdownFormatter)(nil)
