// Package main provides localization for the screenrec CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Commands
		"Record the screen, a test pattern or a web page to H.264 MP4": "画面、テストパターン、WebページをH.264 MP4に録画",
		"Record to an MP4 file until a stop condition is met":          "停止条件を満たすまでMP4ファイルに録画",
		"Show the video track of an MP4 file":                          "MP4ファイルの映像トラック情報を表示",
		"List active displays":                                         "有効なディスプレイを一覧表示",

		// Output flags
		"YAML configuration file": "YAML設定ファイル",
		"Output MP4 file path":    "出力MP4ファイルパス",
		"Output execution summary to file (Markdown format)": "実行サマリーをファイルに出力（Markdown形式）",

		// Source flags
		"Capture source (screen, pattern, chrome)": "キャプチャソース（screen, pattern, chrome）",
		"Display index for the screen source":      "screenソースのディスプレイ番号",
		"Path to Chrome executable":                "Chrome実行ファイルのパス",
		"Run browser in non-headless mode":         "ブラウザを非ヘッドレスモードで実行",

		// Video flags
		"Resolution preset (720p, 1080p, 1440p, native) or WIDTHxHEIGHT": "解像度プリセット（720p, 1080p, 1440p, native）または 幅x高さ",
		"Output video width":                          "出力動画の幅",
		"Output video height":                         "出力動画の高さ",
		"Nominal frame rate":                          "公称フレームレート",
		"Timestamp mode (constant, wallclock)":        "タイムスタンプ方式（constant, wallclock）",
		"Stop after this many frames (0 = unlimited)": "このフレーム数で停止（0 = 無制限）",
		"Stop after this duration (0 = unlimited)":    "この時間で停止（0 = 無制限）",

		// Encoding flags
		"Quality preset (low, medium, high)":                                "品質プリセット（low, medium, high）",
		"Video CRF value (0-51, lower is better, overrides quality preset)": "動画のCRF値（0-51、低いほど高品質、品質プリセットを上書き）",
		"x264 speed preset (overrides quality preset)":                      "x264速度プリセット（品質プリセットを上書き）",
		"Path to ffmpeg executable":                                         "ffmpeg実行ファイルのパス",
		"Frames buffered between capture and encode":                        "キャプチャとエンコード間のバッファフレーム数",

		// Debug and logging flags
		"Enable debug output":                         "デバッグ出力を有効化",
		"Directory for debug output":                  "デバッグ出力のディレクトリ",
		"Save every Nth captured frame in debug mode": "デバッグ時にNフレームごとに保存",
		"Log level (debug, info, warn, error)":        "ログレベル（debug, info, warn, error）",
		"Suppress all log output":                     "全てのログ出力を抑制",

		// Probe and displays output
		"A file argument is required": "ファイル引数が必要です",
		"Size":                        "サイズ",
		"Frames":                      "フレーム",
		"keyframes":                   "キーフレーム",
		"Timescale":                   "タイムスケール",
		"Fragments":                   "フラグメント",
		"(primary)":                   "（プライマリ）",
		"Frame %d written to %s":      "フレーム %d を %s に書き出しました",

		"Decode this frame index (requires ffmpeg)": "このフレーム番号をデコード（ffmpegが必要）",
		"Write the decoded frame to this PNG file":  "デコードしたフレームをこのPNGファイルに書き出す",

		// Summary content
		"Recording Summary":      "録画サマリー",
		"Source":                 "ソース",
		"Target":                 "対象",
		"Session":                "セッション",
		"Session ID":             "セッションID",
		"Started At":             "開始日時",
		"Duration":               "所要時間",
		"Stop Reason":            "停止理由",
		"Error":                  "エラー",
		"Settings":               "設定",
		"Resolution":             "解像度",
		"Frame Rate":             "フレームレート",
		"Codec":                  "コーデック",
		"Quality":                "品質",
		"Encoder Preset":         "エンコーダープリセット",
		"Timestamps":             "タイムスタンプ",
		"Video":                  "動画",
		"Output":                 "出力先",
		"Frames Captured":        "キャプチャしたフレーム数",
		"Frames Encoded":         "エンコードしたフレーム数",
		"Frames Skipped":         "スキップしたフレーム数",
		"Video Duration":         "動画再生時間",
		"Effective Capture Rate": "実効キャプチャレート",
		"File Size":              "ファイルサイズ",
		"Warnings":               "警告",
		"Generated at":           "生成日時",

		// Stop reasons
		"Target frame count reached": "目標フレーム数に到達",
		"Timeout":                    "タイムアウト",
		"Stopped by user":            "ユーザーによる停止",
		"Cancelled":                  "キャンセル",
		"Capture source ended":       "キャプチャソースが終了",
		"Encoding failed":            "エンコード失敗",
		"N/A":                        "該当なし",
	})
}
