package pptgen

// Notes:
// - LayoutPolicy: parsing and resolution against a template's layout count
// - LayoutIndex: lenient decoding of layout_idx
// - SlideSpec: field aliases and per-item decode errors
// - DecodeRequest: request-level validation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// TestParseLayoutPolicy - Configuration values
// ---------------------------------------------------------------------------

func TestParseLayoutPolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    LayoutPolicy
		wantErr bool
	}{
		{in: "", want: LayoutFallback},
		{in: "fallback", want: LayoutFallback},
		{in: " Skip ", want: LayoutSkip},
		{in: "drop", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseLayoutPolicy(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownPolicy)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLayoutPolicy_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "fallback", LayoutFallback.String())
	assert.Equal(t, "skip", LayoutSkip.String())
}

// ---------------------------------------------------------------------------
// TestLayoutPolicy_resolve - Layout resolution
// ---------------------------------------------------------------------------

func TestLayoutPolicy_resolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		layout   LayoutIndex
		count    int
		fallback int
		skipErr  bool
	}{
		{name: "in range", layout: Layout(2), count: 3, fallback: 2},
		{name: "first", layout: Layout(0), count: 3, fallback: 0},
		{name: "past the end", layout: Layout(3), count: 3, fallback: 0, skipErr: true},
		{name: "negative", layout: Layout(-1), count: 3, fallback: 0, skipErr: true},
		{name: "absent", layout: LayoutIndex{}, count: 3, fallback: 0, skipErr: true},
		{name: "invalid", layout: LayoutIndex{Present: true, Invalid: true}, count: 3, fallback: 0, skipErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := LayoutFallback.resolve(tt.layout, tt.count)
			require.NoError(t, err)
			assert.Equal(t, tt.fallback, got)

			got, err = LayoutSkip.resolve(tt.layout, tt.count)
			if tt.skipErr {
				assert.ErrorIs(t, err, ErrInvalidLayout)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.fallback, got)
		})
	}
}

func TestLayoutPolicy_resolveNoLayouts(t *testing.T) {
	t.Parallel()

	for _, p := range []LayoutPolicy{LayoutFallback, LayoutSkip} {
		_, err := p.resolve(Layout(0), 0)
		assert.ErrorIs(t, err, ErrInvalidLayout, p.String())
	}
}

// ---------------------------------------------------------------------------
// TestLayoutIndex_UnmarshalJSON - Lenient decoding
// ---------------------------------------------------------------------------

func TestLayoutIndex_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		json string
		want LayoutIndex
	}{
		{json: `1`, want: Layout(1)},
		{json: `-1`, want: Layout(-1)},
		{json: `"2"`, want: Layout(2)},
		{json: `" 3 "`, want: Layout(3)},
		{json: `4.0`, want: Layout(4)},
		{json: `null`, want: LayoutIndex{}},
		{json: `1.5`, want: LayoutIndex{Present: true, Invalid: true}},
		{json: `"title"`, want: LayoutIndex{Present: true, Invalid: true}},
		{json: `true`, want: LayoutIndex{Present: true, Invalid: true}},
		{json: `[0]`, want: LayoutIndex{Present: true, Invalid: true}},
	}

	for _, tt := range tests {
		t.Run(tt.json, func(t *testing.T) {
			t.Parallel()

			var got LayoutIndex
			require.NoError(t, got.UnmarshalJSON([]byte(tt.json)))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLayoutIndex_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "absent", LayoutIndex{}.String())
	assert.Equal(t, "invalid", LayoutIndex{Present: true, Invalid: true}.String())
	assert.Equal(t, "7", Layout(7).String())
}

// ---------------------------------------------------------------------------
// TestSlideSpec_UnmarshalJSON - Field aliases
// ---------------------------------------------------------------------------

func TestSlideSpec_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		json    string
		want    SlideSpec
		wantErr bool
	}{
		{
			name: "english names",
			json: `{"layout_idx": 1, "title": "Pujian", "body": "a\\nb", "section": "Pembukaan"}`,
			want: SlideSpec{Layout: Layout(1), Title: "Pujian", Body: `a\nb`, Section: "Pembukaan"},
		},
		{
			name: "indonesian names",
			json: `{"layout_idx": "2", "judul": "Doa", "isi": "Amin"}`,
			want: SlideSpec{Layout: Layout(2), Title: "Doa", Body: "Amin"},
		},
		{
			name: "english wins when both set",
			json: `{"title": "Title", "judul": "Judul", "body": "", "isi": "Isi"}`,
			want: SlideSpec{Title: "Title", Body: "Isi"},
		},
		{
			name: "numbers as text",
			json: `{"title": 3, "body": true}`,
			want: SlideSpec{Title: "3", Body: "true"},
		},
		{
			name: "section trimmed",
			json: `{"section": "  Firman  "}`,
			want: SlideSpec{Section: "Firman"},
		},
		{
			name:    "object body",
			json:    `{"body": {"text": "x"}}`,
			wantErr: true,
		},
		{
			name:    "not an object",
			json:    `"slide"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got SlideSpec
			require.NoError(t, json.Unmarshal([]byte(tt.json), &got))
			if tt.wantErr {
				assert.ErrorIs(t, got.Err(), ErrInvalidRequest)
				return
			}
			assert.NoError(t, got.Err())
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSlideSpec_MarshalJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(SlideSpec{Layout: Layout(1), Title: "Doa"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"layout_idx": 1, "title": "Doa"}`, string(data))

	data, err = json.Marshal(SlideSpec{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"layout_idx": null}`, string(data))
}

// ---------------------------------------------------------------------------
// TestDecodeRequest - Request validation
// ---------------------------------------------------------------------------

func TestDecodeRequest(t *testing.T) {
	t.Parallel()

	t.Run("slides in order", func(t *testing.T) {
		t.Parallel()

		req, err := DecodeRequest(strings.NewReader(`{"slides": [{"judul": "A"}, {"judul": "B"}]}`))
		require.NoError(t, err)
		require.Len(t, req.Slides, 2)
		assert.Equal(t, "A", req.Slides[0].Title)
		assert.Equal(t, "B", req.Slides[1].Title)
	})

	t.Run("empty list", func(t *testing.T) {
		t.Parallel()

		req, err := DecodeRequest(strings.NewReader(`{"slides": []}`))
		require.NoError(t, err)
		assert.Empty(t, req.Slides)
	})

	t.Run("bad item does not fail the request", func(t *testing.T) {
		t.Parallel()

		req, err := DecodeRequest(strings.NewReader(`{"slides": [42, {"title": "ok"}]}`))
		require.NoError(t, err)
		require.Len(t, req.Slides, 2)
		assert.Error(t, req.Slides[0].Err())
		assert.NoError(t, req.Slides[1].Err())
	})

	errCases := map[string]string{
		"malformed json":  `{"slides": [`,
		"missing slides":  `{"slide": []}`,
		"null slides":     `{"slides": null}`,
		"slides not list": `{"slides": {}}`,
		"empty body":      ``,
		"too many":        `{"slides": [` + strings.TrimSuffix(strings.Repeat(`{},`, MaxSlidesPerRequest+1), ",") + `]}`,
	}
	for name, body := range errCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := DecodeRequest(strings.NewReader(body))
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

// ---------------------------------------------------------------------------
// TestResult_Skipped
// ---------------------------------------------------------------------------

func TestResult_Skipped(t *testing.T) {
	t.Parallel()

	r := &Result{Failures: []SlideFailure{
		{Spec: 0, Added: false},
		{Spec: 2, Added: true},
		{Spec: 3, Added: false},
	}}
	assert.Equal(t, 2, r.Skipped())
	assert.Zero(t, (&Result{}).Skipped())
}
