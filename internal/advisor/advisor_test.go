package advisor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"storefront/internal/catalog"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func menu() *catalog.Catalog {
	return catalog.MustNew([]catalog.Item{
		{ID: "1", Name: "Blush Velvet Cupcake", Price: decimal.RequireFromString("4.5"), Description: "Cocoa sponge.", Category: catalog.Pastries},
		{ID: "2", Name: "Rosewater Macarons", Price: decimal.NewFromInt(18), Description: "A dozen macarons.", Category: catalog.Cookies},
	})
}

func TestRenderMenu(t *testing.T) {
	got := RenderMenu(menu().Items())
	assert.Equal(t, "Blush Velvet Cupcake (R4.50): Cocoa sponge.\nRosewater Macarons (R18.00): A dozen macarons.", got)
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(menu(), "something for a birthday?")

	assert.Contains(t, p, `named "Rosie"`)
	assert.Contains(t, p, "Rosewater Macarons (R18.00): A dozen macarons.")
	assert.Contains(t, p, "User asks: something for a birthday?")
	assert.Contains(t, p, "ZAR (R)")
	assert.Less(t, strings.Index(p, "current menu"), strings.Index(p, "User asks"))
}

func TestGetAdviceReturnsReplyVerbatim(t *testing.T) {
	var prompt string
	gen := GeneratorFunc(func(_ context.Context, p string) (string, error) {
		prompt = p
		return "  Try the macarons, darling!  ", nil
	})
	a := New(gen, menu(), time.Second)

	assert.Equal(t, "  Try the macarons, darling!  ", a.GetAdvice(context.Background(), "hello"))
	assert.Contains(t, prompt, "User asks: hello")
}

func TestGetAdviceFallbacks(t *testing.T) {
	tests := []struct {
		name string
		gen  Generator
		want string
	}{
		{
			name: "error",
			gen: GeneratorFunc(func(context.Context, string) (string, error) {
				return "", errors.New("connection refused")
			}),
			want: FallbackUnavailable,
		},
		{
			name: "empty reply",
			gen: GeneratorFunc(func(context.Context, string) (string, error) {
				return "", nil
			}),
			want: FallbackEmpty,
		},
		{
			name: "panic",
			gen: GeneratorFunc(func(context.Context, string) (string, error) {
				panic("boom")
			}),
			want: FallbackUnavailable,
		},
		{
			name: "not configured",
			gen:  nil,
			want: FallbackUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(tt.gen, menu(), time.Second)
			assert.Equal(t, tt.want, a.GetAdvice(context.Background(), "hello"))
		})
	}
}

func TestAskTimesOut(t *testing.T) {
	gen := GeneratorFunc(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	a := New(gen, menu(), 20*time.Millisecond)

	res := a.Ask(context.Background(), "hello")
	require.Equal(t, OutcomeUnavailable, res.Outcome)
	assert.ErrorIs(t, res.Reason, context.DeadlineExceeded)
	assert.Equal(t, FallbackUnavailable, res.Display())
}

func TestAskCallsGeneratorOnce(t *testing.T) {
	calls := 0
	gen := GeneratorFunc(func(context.Context, string) (string, error) {
		calls++
		return "", errors.New("503")
	})
	a := New(gen, menu(), time.Second)
	a.GetAdvice(context.Background(), "hi")

	assert.Equal(t, 1, calls)
}

func TestFallbackRecommendsCatalogItem(t *testing.T) {
	first, ok := catalog.Default().Lookup("1")
	require.True(t, ok)
	assert.Contains(t, FallbackUnavailable, first.Name+"s")
}

func TestNewGeminiGeneratorRequiresKey(t *testing.T) {
	_, err := NewGeminiGenerator(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
