package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticFilter struct {
	pass bool
	err  error
}

func (f staticFilter) Evaluate([]string) (bool, error) { return f.pass, f.err }
func (f staticFilter) Description() string {
	if f.pass {
		return "true"
	}
	return "false"
}

func TestCompositeFilter(t *testing.T) {
	tests := []struct {
		name    string
		filters []Filter
		logic   LogicOp
		want    bool
	}{
		{"empty passes", nil, LogicAND, true},
		{"and all true", []Filter{staticFilter{pass: true}, staticFilter{pass: true}}, LogicAND, true},
		{"and one false", []Filter{staticFilter{pass: true}, staticFilter{pass: false}}, LogicAND, false},
		{"or one true", []Filter{staticFilter{pass: false}, staticFilter{pass: true}}, LogicOR, true},
		{"or all false", []Filter{staticFilter{pass: false}, staticFilter{pass: false}}, LogicOR, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &CompositeFilter{Filters: tt.filters, Logic: tt.logic}
			got, err := f.Evaluate(nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompositeFilterUnknownLogic(t *testing.T) {
	f := &CompositeFilter{Filters: []Filter{staticFilter{pass: true}}, Logic: LogicOp(9)}
	_, err := f.Evaluate(nil)
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestCompositeFilterDescription(t *testing.T) {
	f := &CompositeFilter{
		Filters: []Filter{staticFilter{pass: true}, staticFilter{pass: false}},
		Logic:   LogicOR,
	}
	assert.Equal(t, "(true OR false)", f.Description())
	assert.Equal(t, "empty filter", (&CompositeFilter{}).Description())
}

func TestAnyColumn(t *testing.T) {
	names := []string{"name", "age"}

	tests := []struct {
		name  string
		text  string
		cells []string
		want  bool
	}{
		{"empty text keeps everything", "", []string{"Alice", "30"}, true},
		{"matches second column", "30", []string{"Alice", "30"}, true},
		{"no column matches", "30", []string{"Bob", "25"}, false},
		{"ignores case", "ALI", []string{"alice", "30"}, true},
		{"substring in the middle", "lic", []string{"Alice", "30"}, true},
		{"whole text is one term", "Alice 30", []string{"Alice", "30"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AnyColumn(tt.text, names).Evaluate(tt.cells)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContains(t *testing.T) {
	f := NewContains(1, "city", "OSLO")
	ok, err := f.Evaluate([]string{"x", "Oslo, Norway"})
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.Evaluate([]string{"x"})
	assert.ErrorIs(t, err, ErrInvalidFilter)

	assert.Equal(t, `city contains "oslo"`, f.Description())
}
