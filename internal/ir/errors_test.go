package ir

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateErrorMatchesSentinel(t *testing.T) {
	err := NewError(ErrCodeScopeUnderflow, Pop{Span: Span{Line: 7}, N: 3}, "cannot pop %d scope(s)", 3)

	assert.True(t, errors.Is(err, ErrScopeUnderflow))
	assert.False(t, errors.Is(err, ErrNameCollision))
	assert.True(t, IsScopeUnderflow(err))
	assert.Equal(t, KindPop, err.Command)
	assert.Equal(t, 7, err.Line)
}

func TestTranslateErrorThroughWrapping(t *testing.T) {
	inner := NewError(ErrCodeUnboundedWeight, nil, "weight x is not a literal")
	wrapped := fmt.Errorf("encode soft constraints: %w", inner)

	assert.True(t, IsUnboundedWeight(wrapped))
	assert.Equal(t, ErrCodeUnboundedWeight, CodeOf(wrapped))
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
}

func TestAtCheckPointStampsOnce(t *testing.T) {
	err := error(NewError(ErrCodeNameCollision, nil, "x redeclared"))

	err = AtCheckPoint(err, 2)
	err = AtCheckPoint(err, 5)

	var te *TranslateError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 2, te.CheckPoint)
}

func TestTranslateErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *TranslateError
		want string
	}{
		{
			name: "no location",
			err:  &TranslateError{Code: ErrCodeParse, Message: "unexpected )"},
			want: "PARSE_ERROR: unexpected )",
		},
		{
			name: "full location",
			err: &TranslateError{
				Code:       ErrCodeUnsupportedOption,
				Message:    `opt.priority "pareto" is not supported`,
				CheckPoint: 1,
				Command:    KindSetOption,
				Line:       4,
			},
			want: `UNSUPPORTED_OPTION: opt.priority "pareto" is not supported (check-point=1, command=set-option, line=4)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}
