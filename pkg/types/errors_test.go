package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorMessage(t *testing.T) {
	tests := []struct {
		err  *AppError
		want string
	}{
		{&AppError{Kind: KindData, Message: "could not save"}, "Data Error: could not save"},
		{&AppError{Kind: KindNetwork, Message: "offline"}, "Network Error: offline"},
		{&AppError{Kind: KindValidation, Message: "name is empty"}, "Validation Error: name is empty"},
		{&AppError{Kind: KindUnknown, Message: "boom"}, "Unknown Error: boom"},
		{&AppError{Kind: KindData, Err: ErrNotFound}, "Data Error: item not found"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := NewDataError("load item", ErrNotFound)

	assert.ErrorIs(t, err, ErrNotFound)
	var appErr *AppError
	assert.True(t, errors.As(fmt.Errorf("show: %w", err), &appErr))
	assert.Equal(t, KindData, appErr.Kind)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindUnknown},
		{"not found", ErrNotFound, KindData},
		{"wrapped not found", fmt.Errorf("load: %w", ErrNotFound), KindData},
		{"detached", ErrPantryDetached, KindData},
		{"invalid name", ErrInvalidName, KindValidation},
		{"invalid filter", fmt.Errorf("query: %w", ErrInvalidFilter), KindValidation},
		{"bad config", ErrSyncStrategyUnknown, KindValidation},
		{"explicit kind wins", NewValidationError("bad", ErrNotFound), KindValidation},
		{"foreign error", errors.New("disk on fire"), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestReporterFunc(t *testing.T) {
	var got []error
	r := ReporterFunc(func(err error) { got = append(got, err) })

	r.Report(ErrNotFound)
	NopReporter{}.Report(ErrNotFound)

	assert.Equal(t, []error{ErrNotFound}, got)
}

func TestFilterValidate(t *testing.T) {
	assert.NoError(t, Filter{}.Validate())
	assert.NoError(t, Filter{Limit: 5, Offset: 10}.Validate())
	assert.ErrorIs(t, Filter{Limit: -1}.Validate(), ErrInvalidFilter)
	assert.ErrorIs(t, Filter{Offset: -1}.Validate(), ErrInvalidFilter)
}
