package analyze

import (
	"context"
	"fmt"
)

const audioMIMEType = "audio/flac"

// Topics uploads an audio file and asks the model for the content named
// by mode: a timestamped topic summary, a transcript, or the answer to a
// custom query. durationSec is quoted in the segmentation prompt so the
// model keeps its timestamps inside the source. The result is the model's
// text verbatim; parsing is the caller's job.
//
// There is no automatic retry here: an analysis call is expensive and the
// pipeline already decides per stage whether to re-run.
func (c *Client) Topics(ctx context.Context, audioPath string, durationSec int, mode Mode, customQuery string) (string, error) {
	if err := c.requireKey(); err != nil {
		return "", err
	}

	fileURI, err := c.UploadFile(ctx, audioPath, audioMIMEType)
	if err != nil {
		return "", err
	}

	var prompt string
	switch {
	case mode == ModeTranscription:
		prompt = "Transcribe the following audio. If the audio is not in English, " +
			"please transcribe it and then translate the transcription to English."
	case mode == ModeCustom && customQuery != "":
		prompt = "Transcribe the following audio and answer the question: " + customQuery
	default:
		prompt = fmt.Sprintf("You are an expert in analyzing audio content. Your task is "+
			"to process the given audio file and generate a structured summary of its key "+
			"topics. The total duration of the audio file is %d seconds. Please ensure "+
			"that all timestamps in your response are within this duration.", durationSec)
	}

	req := GenerateRequest{
		Contents: []Content{{
			Role: "user",
			Parts: []Part{
				{Text: prompt},
				{FileData: &FileData{MIMEType: audioMIMEType, FileURI: fileURI}},
			},
		}},
		GenerationConfig: &GenerationConfig{
			Temperature:     0.2,
			TopP:            0.95,
			TopK:            40,
			MaxOutputTokens: 8192,
		},
	}
	c.logger.Debug("requesting audio analysis", "mode", mode, "audio", audioPath, "duration_sec", durationSec)
	return c.GenerateContent(ctx, req)
}
