package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Session
		"Recording %dx%d @ %d fps to %s":      "%dx%d @ %d fps で %s に録画中",
		"Recorded %d frames in %.1fs (%s)":    "%d フレームを %.1f 秒で録画しました (%s)",
		"Recording cancelled":                 "録画がキャンセルされました",
		"Encoding failed, stopping capture":   "エンコードに失敗したためキャプチャを停止します",
		"Stop requested":                      "停止が要求されました",
		"Timeout of %v reached":               "タイムアウト %v に達しました",
		"No frames were captured":             "フレームが1枚もキャプチャされませんでした",
		"Failed to open encoder: %v":          "エンコーダーを開けませんでした: %v",
		"Failed to start capture source: %v":  "キャプチャソースを開始できませんでした: %v",
		"Failed to stop capture source: %v":   "キャプチャソースを停止できませんでした: %v",
		"Failed to encode session report: %v": "セッションレポートのエンコードに失敗しました: %v",
		"Failed to save session report: %v":   "セッションレポートの保存に失敗しました: %v",

		// Capture loop
		"Captured %d frames (%.1f fps)":             "%d フレームをキャプチャしました (%.1f fps)",
		"Capture loop ended (%s) after %d frames":   "キャプチャループ終了 (%s): %d フレーム",
		"Capture source failed: %v":                 "キャプチャソースでエラーが発生しました: %v",
		"Frame channel closed, stopping capture":    "フレームチャネルが閉じられたためキャプチャを停止します",
		"Frame channel abandoned, stopping capture": "エンコードが中止されたためキャプチャを停止します",
		"Failed to save debug frame %d: %v":         "デバッグフレーム %d の保存に失敗しました: %v",

		// Encode loop
		"Encode loop ended after %d frames": "エンコードループ終了: %d フレーム",
		"Encoding stopped at frame %d: %v":  "フレーム %d でエンコードを中止しました: %v",
		"Discarded %d queued frames":        "キュー内の %d フレームを破棄しました",
		"Frame channel closed and drained":  "フレームチャネルを閉じて空にしました",
		"Failed to finalize output: %v":     "出力の確定に失敗しました: %v",

		// Encoder and container
		"Encoder opened: %s %dx%d @ %d fps (codec %s, container time base %s)": "エンコーダーを開きました: %s %dx%d @ %d fps (コーデック %s, コンテナ時間基準 %s)",
		"Encoder finished: %d frames, %d packets, %d bytes":                    "エンコード完了: %d フレーム, %d パケット, %d バイト",
		"Starting ffmpeg: %s %v":                    "ffmpeg を起動: %s %v",
		"MP4 header written: %dx%d, timescale %d":   "MP4ヘッダーを書き込みました: %dx%d, タイムスケール %d",
		"MP4 finalized: %d samples in %d fragments": "MP4を確定しました: %d サンプル, %d フラグメント",

		// Chrome source
		"Launching Chrome %s for %s": "%[2]s のため Chrome %[1]s を起動中",
		"Stop screencast failed: %v": "スクリーンキャストの停止に失敗しました: %v",

		// CLI
		"Interrupted, finalizing output...": "中断されました。出力を確定しています...",
		"Interrupted again, aborting":       "再度中断されました。中止します",
		"Output saved to %s":                "出力を %s に保存しました",
		"Summary saved to %s":               "サマリーを %s に保存しました",
		"Failed to write summary: %v":       "サマリーの書き込みに失敗しました: %v",
	})
}
