package callbacks_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/effective-security/stockmcp/callbacks"
	"github.com/effective-security/stockmcp/mocks/mocktools"
	"github.com/effective-security/xlog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

type fakeTool struct {
	name        string
	description string
}

func (f *fakeTool) Name() string        { return f.name }
func (f *fakeTool) Description() string { return f.description }
func (f *fakeTool) Parameters() any     { return nil }
func (f *fakeTool) Call(ctx context.Context, input string) (string, error) {
	return input, nil
}

func TestPrinter(t *testing.T) {
	ctx := context.Background()
	tool := &fakeTool{name: "test-tool"}

	var buf bytes.Buffer
	cb := callbacks.NewPrinter(&buf, callbacks.ModeVerbose)
	cb.OnToolStart(ctx, tool, "test input")
	cb.OnToolEnd(ctx, tool, "test input", "test output")
	cb.OnToolError(ctx, tool, "test input", errors.New("test error"))

	res := buf.String()
	assert.Contains(t, res, "Tool Start: test-tool")
	assert.Contains(t, res, "Input: test input")
	assert.Contains(t, res, "Tool End: test-tool")
	assert.Contains(t, res, "Output: test output")
	assert.Contains(t, res, "Tool Error: test-tool: test error")

	buf.Reset()
	cb = callbacks.NewPrinter(&buf, callbacks.ModeDefault)
	cb.OnToolEnd(ctx, tool, "test input", "test output")
	assert.Equal(t, "Tool End: test-tool\n", buf.String())
}

func TestFanout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	tool := &fakeTool{name: "test-tool"}
	errTest := errors.New("test error")

	m1 := mocktools.NewMockCallback(ctrl)
	m2 := mocktools.NewMockCallback(ctrl)
	for _, m := range []*mocktools.MockCallback{m1, m2} {
		m.EXPECT().OnToolStart(ctx, tool, "in").Times(1)
		m.EXPECT().OnToolEnd(ctx, tool, "in", "out").Times(1)
		m.EXPECT().OnToolError(ctx, tool, "in", errTest).Times(1)
	}

	var buf bytes.Buffer
	fan := callbacks.NewFanout(m1, callbacks.NewNoop())
	fan.Add(m2)
	fan.Add(callbacks.NewPackageLogger(xlog.NewPackageLogger("github.com/effective-security/stockmcp", "callbacks_test")))
	fan.Add(callbacks.NewPrinter(&buf, callbacks.ModeDefault))

	fan.OnToolStart(ctx, tool, "in")
	fan.OnToolEnd(ctx, tool, "in", "out")
	fan.OnToolError(ctx, tool, "in", errTest)

	assert.Contains(t, buf.String(), "Tool Error: test-tool: test error")
}
