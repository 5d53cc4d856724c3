package service

import (
	"slices"
	"strconv"
	"strings"

	"github.com/saurab2057/Filetool/internal/cloudconvert"
	"github.com/saurab2057/Filetool/internal/model"
)

var (
	videoTargets  = []string{"mp4", "webm", "mkv", "mov", "avi"}
	audioTargets  = []string{"mp3", "wav", "aac", "flac"}
	imageTargets  = []string{"png", "jpg", "svg", "webp", "jfif"}
	pdfImages     = []string{"jpg", "png"}
	videoSources  = []string{"mp4", "mov", "mkv", "avi", "webm", "flv"}
	videoCRFTable = map[string]int{"high": 18, "medium": 23, "low": 28}
)

const defaultCRF = 23

// recipeFamily maps one target family to its convert-task builder.
type recipeFamily struct {
	name    string
	matches func(source, target string) bool
	build   func(source, target string, settings model.FileSettings) cloudconvert.ConvertTask
}

// recipeFamilies is checked in order. pdf→image precedes the generic image family.
var recipeFamilies = []recipeFamily{
	{
		name:    "video",
		matches: func(_, target string) bool { return slices.Contains(videoTargets, target) },
		build:   videoRecipe,
	},
	{
		name:    "audio",
		matches: func(_, target string) bool { return slices.Contains(audioTargets, target) },
		build:   audioRecipe,
	},
	{
		name: "pdf-image",
		matches: func(source, target string) bool {
			return source == "pdf" && slices.Contains(pdfImages, target)
		},
		build: func(string, string, model.FileSettings) cloudconvert.ConvertTask {
			return cloudconvert.ConvertTask{Engine: "poppler", Pages: "1"}
		},
	},
	{
		name:    "image",
		matches: func(_, target string) bool { return slices.Contains(imageTargets, target) },
		build:   imageRecipe,
	},
	{
		name:    "gif",
		matches: func(_, target string) bool { return target == "gif" },
		build: func(string, string, model.FileSettings) cloudconvert.ConvertTask {
			return cloudconvert.ConvertTask{Engine: "ffmpeg", VideoCodec: "gif"}
		},
	},
}

// BuildRecipe returns the convert task for one file. Pairs outside the table fail
// with *UnsupportedConversionError.
func BuildRecipe(source, target string, settings model.FileSettings) (cloudconvert.ConvertTask, error) {
	source = strings.ToLower(source)
	target = strings.ToLower(target)

	for _, f := range recipeFamilies {
		if f.matches(source, target) {
			task := f.build(source, target, settings)
			task.Operation = cloudconvert.OperationConvert
			task.Input = cloudconvert.ImportTaskName
			task.OutputFormat = target
			return task, nil
		}
	}
	return cloudconvert.ConvertTask{}, &UnsupportedConversionError{From: source, To: target}
}

func videoRecipe(_, _ string, settings model.FileSettings) cloudconvert.ConvertTask {
	task := cloudconvert.ConvertTask{
		Engine:     "ffmpeg",
		VideoCodec: "x264",
		AudioCodec: "copy",
		CRF:        defaultCRF,
	}
	if settings.RemoveAudio {
		task.AudioCodec = "none"
	}
	if crf, ok := videoCRFTable[settings.VideoQuality]; ok {
		task.CRF = crf
	}

	if settings.Resolution != "" && settings.Resolution != "original" {
		if w, h, ok := parseResolution(settings.Resolution); ok {
			task.Width, task.Height = w, h
		}
	}

	// Trimming needs both ends.
	if settings.TrimStart != "" && settings.TrimEnd != "" {
		task.VideoStartTime = settings.TrimStart.String()
		task.VideoEndTime = settings.TrimEnd.String()
	}
	return task
}

func audioRecipe(source, target string, settings model.FileSettings) cloudconvert.ConvertTask {
	task := cloudconvert.ConvertTask{Engine: "ffmpeg", AudioCodec: target}

	// A video source cannot copy its audio stream into an audio-only container.
	if !slices.Contains(videoSources, source) && settings.AudioCodec != "" && settings.AudioCodec != "auto" {
		task.AudioCodec = settings.AudioCodec
	}

	switch settings.AudioRateControl {
	case "cbr":
		if kbps, ok := settings.Bitrate.Int(); ok && kbps > 0 {
			task.AudioBitrate = kbps * 1000
		}
	case "vbr":
		task.AudioQScale = 2
	}
	return task
}

func imageRecipe(_, _ string, settings model.FileSettings) cloudconvert.ConvertTask {
	task := cloudconvert.ConvertTask{Engine: "imagemagick"}
	if q, ok := settings.Quality.Int(); ok && q > 0 {
		task.Quality = q
	}
	return task
}

// parseResolution reads "WxH".
func parseResolution(s string) (int, int, bool) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, false
	}
	w, err := strconv.Atoi(strings.TrimSpace(ws))
	if err != nil || w <= 0 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(strings.TrimSpace(hs))
	if err != nil || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}
