package period

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mbkm-console/internal/model"
)

type settingFunc func(ctx context.Context) (*model.Setting, error)

func (f settingFunc) CurrentSetting(ctx context.Context) (*model.Setting, error) { return f(ctx) }

type optionsFunc func(ctx context.Context) (model.FilterOptions, error)

func (f optionsFunc) FilterOptions(ctx context.Context) (model.FilterOptions, error) { return f(ctx) }

var errDown = errors.New("connection refused")

func years(v ...string) model.FilterOptions {
	opts := make([]model.Option, len(v))
	for i, y := range v {
		opts[i] = model.Option{Value: y, Label: y}
	}
	return model.FilterOptions{"academic_years": opts}
}

func TestFallbackOrder(t *testing.T) {
	t.Parallel()

	active := &model.Setting{AcademicYear: "2025/2026", Semester: model.SemesterGenap, StartDate: "2026-02-01"}
	tests := []struct {
		name     string
		setting  settingFunc
		options  optionsFunc
		want     model.ActivePeriod
		wantFrom Source
	}{
		{
			name:     "current setting wins",
			setting:  func(context.Context) (*model.Setting, error) { return active, nil },
			options:  func(context.Context) (model.FilterOptions, error) { return years("2030/2031"), nil },
			want:     model.ActivePeriod{AcademicYear: "2025/2026", Semester: model.SemesterGenap, StartDate: "2026-02-01"},
			wantFrom: SourceSetting,
		},
		{
			name:     "setting unavailable uses first year and Ganjil",
			setting:  func(context.Context) (*model.Setting, error) { return nil, errDown },
			options:  func(context.Context) (model.FilterOptions, error) { return years("2024/2025", "2023/2024"), nil },
			want:     model.ActivePeriod{AcademicYear: "2024/2025", Semester: model.SemesterGanjil},
			wantFrom: SourceFilterOptions,
		},
		{
			name:     "no active setting",
			setting:  func(context.Context) (*model.Setting, error) { return nil, nil },
			options:  func(context.Context) (model.FilterOptions, error) { return years("2026/2027"), nil },
			want:     model.ActivePeriod{AcademicYear: "2026/2027", Semester: model.SemesterGanjil},
			wantFrom: SourceFilterOptions,
		},
		{
			name:     "both unavailable",
			setting:  func(context.Context) (*model.Setting, error) { return nil, errDown },
			options:  func(context.Context) (model.FilterOptions, error) { return nil, errDown },
			want:     Fallback,
			wantFrom: SourceFallback,
		},
		{
			name:     "empty year list",
			setting:  func(context.Context) (*model.Setting, error) { return &model.Setting{}, nil },
			options:  func(context.Context) (model.FilterOptions, error) { return years(), nil },
			want:     Fallback,
			wantFrom: SourceFallback,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := NewResolver(tt.setting, tt.options, nil)
			require.False(t, r.Initialized())
			got := r.Resolve(context.Background())
			assert.Equal(t, tt.want, got.Period)
			assert.Equal(t, tt.wantFrom, got.Source)
			assert.True(t, r.Initialized())
		})
	}
}

func TestResolveRunsOnce(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	release := make(chan struct{})
	setting := settingFunc(func(context.Context) (*model.Setting, error) {
		calls.Add(1)
		<-release
		return &model.Setting{AcademicYear: "2025/2026", Semester: model.SemesterGanjil}, nil
	})
	r := NewResolver(setting, nil, nil)

	var wg sync.WaitGroup
	results := make([]Resolution, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = r.Resolve(context.Background())
		}()
	}
	close(release)
	wg.Wait()

	_ = r.Resolve(context.Background())
	assert.Equal(t, int32(1), calls.Load())
	for _, res := range results {
		assert.Equal(t, SourceSetting, res.Source)
	}
}
