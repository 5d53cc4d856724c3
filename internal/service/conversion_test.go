package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/saurab2057/Filetool/internal/cloudconvert"
	"github.com/saurab2057/Filetool/internal/model"
	"github.com/saurab2057/Filetool/mocks"
	"github.com/stretchr/testify/require"
)

func newConversionServiceWithMocks(t *testing.T) (*ConversionService, *mocks.MockJobRepository, *mocks.MockConverter) {
	t.Helper()
	ctrl := gomock.NewController(t)
	jobs := mocks.NewMockJobRepository(ctrl)
	converter := mocks.NewMockConverter(ctrl)
	return NewConversionService(jobs, converter, nil, time.Minute), jobs, converter
}

func TestConversionService_ConvertBatch(t *testing.T) {
	svc, jobs, converter := newConversionServiceWithMocks(t)
	identity := &model.Identity{ID: "user-1"}

	requests := []model.ConversionRequest{
		{OriginalName: "clip.mov", SourceFormat: "mov", TargetFormat: "mp4", Content: []byte("a")},
		{OriginalName: "report.docx", SourceFormat: "docx", TargetFormat: "xlsx", Content: []byte("b")},
		{OriginalName: "photo.png", SourceFormat: "png", TargetFormat: "jpg", Content: []byte("c")},
	}

	converter.EXPECT().Convert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, conv cloudconvert.Conversion) (*cloudconvert.File, error) {
			return &cloudconvert.File{
				Filename: conv.Filename + "." + conv.To,
				Size:     int64(len(conv.Content)) * 10,
				URL:      "https://storage.example.com/" + conv.To,
			}, nil
		}).Times(2)

	var (
		mu    sync.Mutex
		saved []*model.ConversionJob
	)
	jobs.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, job *model.ConversionJob) error {
			mu.Lock()
			defer mu.Unlock()
			saved = append(saved, job)
			return nil
		}).Times(2)

	outcomes := svc.ConvertBatch(context.Background(), identity, requests)
	require.Len(t, outcomes, 3)

	require.Equal(t, "clip.mov", outcomes[0].OriginalName)
	require.True(t, outcomes[0].Success)
	require.Equal(t, "https://storage.example.com/mp4", outcomes[0].DownloadURL)

	require.Equal(t, "report.docx", outcomes[1].OriginalName)
	require.False(t, outcomes[1].Success)
	require.Equal(t, "Unsupported conversion from .docx to .xlsx", outcomes[1].Message)
	require.Empty(t, outcomes[1].DownloadURL)

	require.Equal(t, "photo.png", outcomes[2].OriginalName)
	require.True(t, outcomes[2].Success)

	require.Len(t, saved, 2)
	for _, job := range saved {
		require.Equal(t, "user-1", job.UserID)
		require.NotEmpty(t, job.ID)
		require.Equal(t, int64(10), job.SizeInBytes)
	}
}

func TestConversionService_ConvertBatch_VendorFailures(t *testing.T) {
	svc, _, converter := newConversionServiceWithMocks(t)
	identity := &model.Identity{ID: "user-1"}

	converter.EXPECT().Convert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, conv cloudconvert.Conversion) (*cloudconvert.File, error) {
			switch conv.From {
			case "wav":
				return nil, cloudconvert.ErrNoOutput
			case "png":
				return nil, &cloudconvert.JobError{JobID: "j1", Task: "convert-1", Code: "INVALID", Message: "Input file is corrupt."}
			default:
				return nil, errors.New("connection reset")
			}
		}).Times(3)

	outcomes := svc.ConvertBatch(context.Background(), identity, []model.ConversionRequest{
		{OriginalName: "a.wav", SourceFormat: "wav", TargetFormat: "mp3"},
		{OriginalName: "b.png", SourceFormat: "png", TargetFormat: "jpg"},
		{OriginalName: "c.mov", SourceFormat: "mov", TargetFormat: "mp4"},
	})

	require.Equal(t, "Conversion process did not produce an output file.", outcomes[0].Message)
	require.Equal(t, "Input file is corrupt.", outcomes[1].Message)
	require.Equal(t, "Conversion failed.", outcomes[2].Message)
	for _, o := range outcomes {
		require.False(t, o.Success)
	}
}

func TestConversionService_ConvertBatch_HistoryFailureKeepsSuccess(t *testing.T) {
	svc, jobs, converter := newConversionServiceWithMocks(t)

	converter.EXPECT().Convert(gomock.Any(), gomock.Any()).
		Return(&cloudconvert.File{Filename: "a.mp3", Size: 5, URL: "https://dl/a.mp3"}, nil)
	jobs.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("database is down"))

	outcomes := svc.ConvertBatch(context.Background(), &model.Identity{ID: "user-1"}, []model.ConversionRequest{
		{OriginalName: "a.wav", SourceFormat: "wav", TargetFormat: "mp3"},
	})

	require.True(t, outcomes[0].Success)
	require.Equal(t, "https://dl/a.mp3", outcomes[0].DownloadURL)
}

func TestConversionService_ConvertBatch_RecoversPanic(t *testing.T) {
	svc, jobs, converter := newConversionServiceWithMocks(t)

	converter.EXPECT().Convert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, conv cloudconvert.Conversion) (*cloudconvert.File, error) {
			if conv.From == "mov" {
				panic("boom")
			}
			return &cloudconvert.File{Filename: "b.jpg", URL: "https://dl/b.jpg"}, nil
		}).Times(2)
	jobs.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	outcomes := svc.ConvertBatch(context.Background(), &model.Identity{ID: "user-1"}, []model.ConversionRequest{
		{OriginalName: "a.mov", SourceFormat: "mov", TargetFormat: "mp4"},
		{OriginalName: "b.png", SourceFormat: "png", TargetFormat: "jpg"},
	})

	require.False(t, outcomes[0].Success)
	require.Equal(t, "Conversion failed.", outcomes[0].Message)
	require.True(t, outcomes[1].Success)
}

func TestConversionService_ConvertBatch_DetachedFromCaller(t *testing.T) {
	svc, jobs, converter := newConversionServiceWithMocks(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	converter.EXPECT().Convert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ cloudconvert.Conversion) (*cloudconvert.File, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return &cloudconvert.File{Filename: "a.mp3", URL: "https://dl/a.mp3"}, nil
		})
	jobs.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	outcomes := svc.ConvertBatch(ctx, &model.Identity{ID: "user-1"}, []model.ConversionRequest{
		{OriginalName: "a.wav", SourceFormat: "wav", TargetFormat: "mp3"},
	})
	require.True(t, outcomes[0].Success)
}

func TestConversionService_History(t *testing.T) {
	svc, jobs, _ := newConversionServiceWithMocks(t)
	ctx := context.Background()

	want := []*model.ConversionJob{{ID: "j1", UserID: "user-1", Filename: "a.mp3"}}
	jobs.EXPECT().ByUser(ctx, "user-1").Return(want, nil)

	got, err := svc.History(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, want, got)

	jobs.EXPECT().ByUser(ctx, "user-2").Return(nil, errors.New("boom"))
	_, err = svc.History(ctx, "user-2")
	require.Error(t, err)
}

func TestOutcomeMessage(t *testing.T) {
	require.Equal(t, "Conversion timed out.", outcomeMessage(&VendorError{Err: context.DeadlineExceeded}))
	require.Equal(t, "Quota exceeded.", outcomeMessage(&VendorError{Err: &cloudconvert.APIError{StatusCode: 402, Message: "Quota exceeded."}}))
	require.Equal(t, "Conversion failed.", outcomeMessage(errors.New("x")))
	require.Equal(t, "Conversion process did not produce an output file.",
		outcomeMessage(fmt.Errorf("wait job: %w", ErrNoOutputProduced)))
}
