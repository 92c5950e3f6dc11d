package errors

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	original := New("original")
	wrapped := Wrap(original, "wrapped")

	assert.Contains(t, wrapped.Error(), "wrapped")
	assert.Contains(t, wrapped.Error(), "original")
	assert.True(t, Is(wrapped, original))
}

func TestMarkPreservesMessage(t *testing.T) {
	cause := Wrap(os.ErrNotExist, "failed to open data.csv")
	marked := Mark(cause, ErrSourceFile)

	assert.Equal(t, cause.Error(), marked.Error())
	assert.True(t, Is(marked, ErrSourceFile))
	assert.True(t, Is(marked, os.ErrNotExist))
	assert.False(t, Is(marked, ErrConnection))
}

func TestWithHint(t *testing.T) {
	err := WithHint(New("error"), "try this fix")

	hints := GetAllHints(err)
	require.Len(t, hints, 1)
	assert.Equal(t, "try this fix", hints[0])
}

func TestIsInputError(t *testing.T) {
	assert.True(t, IsInputError(Mark(New("x"), ErrSourceFile)))
	assert.True(t, IsInputError(Wrap(Mark(New("x"), ErrMalformedInput), "ctx")))
	assert.False(t, IsInputError(Mark(New("x"), ErrConnection)))
	assert.False(t, IsInputError(nil))
}

func TestCategory(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{Mark(New("a"), ErrSourceFile), "source"},
		{Mark(New("b"), ErrMalformedInput), "input"},
		{Wrap(Mark(New("c"), ErrConnection), "ping"), "connection"},
		{Mark(New("d"), ErrBulkWrite), "bulk"},
		{Mark(New("e"), ErrInvalidConfig), "config"},
		{fmt.Errorf("plain"), "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Category(tt.err))
		})
	}
}
