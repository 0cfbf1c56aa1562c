package bot

import (
	"fmt"
	"time"

	"github.com/foxseedlab/voicesatellite/internal/journal"
)

const (
	slashCommandStart  = "assist"
	slashCommandStop   = "assist-stop"
	slashCommandStatus = "assist-status"

	slashCommandStartDescription  = "ボイスアシスタントを起動します。"
	slashCommandStopDescription   = "ボイスアシスタントを停止します。"
	slashCommandStatusDescription = "ボイスアシスタントの状態を表示します。"

	messageEphemeralWrongGuild     = ":warning: **このサーバーでは実行できません。**"
	messageEphemeralUnknownCommand = ":warning: **不明なコマンドです。**"
	messageEphemeralAlreadyRunning = ":warning: **ボイスアシスタントは既に起動しています。**"
	messageEphemeralNotRunning     = ":warning: **現在ボイスアシスタントは起動していません。**"
	messageEphemeralStartFailed    = ":warning: **ボイスアシスタントの起動に失敗しました。**\n-# パイプラインに接続されていません。"
	messageEphemeralStartRequested = ":microphone2: **ボイスアシスタントの起動を要求しました。**\n-# /assist-stop コマンドで停止できます。"
	messageEphemeralStopped        = ":pause_button:  **ボイスアシスタントを停止しました。**\n-# /assist コマンドで再度起動できます。"

	messageRunStart = ":microphone2: **聞き取りを開始しました。**"
	messageRunEnd   = ":pause_button:  **応答が完了しました。**"

	messageSTTEndFormat   = ":speech_balloon: **認識結果：** %s"
	messageTTSStartFormat = ":robot: **応答：** %s"
	messageTTSEndFormat   = ":loud_sound: 応答音声：%s"
	messageErrorFormat    = ":warning: **エラーが発生しました。**\n-# %s（%s）"
	messageElapsedFormat  = "-# 経過時間 %s"
	messageStatusFormat   = "状態：%s\n送信パケット数：%d（%d バイト）\n送信失敗：%d"

	messageLastRunFormat        = "直近の実行：%s（イベント %d 件）"
	messageLastTranscriptFormat = "\n直近の認識結果：%s"
)

func errorMessage(code, message string) string {
	if code == "" {
		code = "unknown"
	}
	if message == "" {
		message = "不明なエラー"
	}
	return fmt.Sprintf(messageErrorFormat, message, code)
}

func runEndMessage(elapsed time.Duration) string {
	if elapsed <= 0 {
		return messageRunEnd
	}
	return messageRunEnd + "\n" + fmt.Sprintf(messageElapsedFormat, formatElapsedHMS(elapsed))
}

func lastRunMessage(summary *journal.RunSummary) string {
	msg := fmt.Sprintf(messageLastRunFormat, summary.Run.Status, summary.Run.EventCount)
	if summary.LastTranscript != "" {
		msg += fmt.Sprintf(messageLastTranscriptFormat, summary.LastTranscript)
	}
	return msg
}

func formatElapsedHMS(d time.Duration) string {
	total := int64(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
