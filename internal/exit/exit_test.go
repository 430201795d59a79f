package exit

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/jacoelho/yamlpath/internal/document"
	"github.com/jacoelho/yamlpath/internal/eyaml"
	"github.com/jacoelho/yamlpath/internal/processor"
	"github.com/jacoelho/yamlpath/internal/yamlnode"
	"github.com/jacoelho/yamlpath/internal/ypath"
)

func TestResult_Print(t *testing.T) {
	var buf bytes.Buffer
	r := &Result{Output: &buf, ExitCode: 0, Message: "done\n"}
	r.Print()

	if got := buf.String(); got != "done\n" {
		t.Errorf("Print() wrote %q, want %q", got, "done\n")
	}
}

func TestSuccessAndError(t *testing.T) {
	tests := []struct {
		name     string
		result   *Result
		wantCode int
		wantOut  *os.File
		wantMsg  string
	}{
		{name: "success", result: Success("ok"), wantCode: CodeOK, wantOut: os.Stdout, wantMsg: "ok"},
		{name: "error", result: Error("bad"), wantCode: CodeUsage, wantOut: os.Stderr, wantMsg: "bad"},
		{name: "errorf", result: Errorf("bad %d", 2), wantCode: CodeUsage, wantOut: os.Stderr, wantMsg: "bad 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.result.ExitCode != tt.wantCode {
				t.Errorf("ExitCode = %d, want %d", tt.result.ExitCode, tt.wantCode)
			}
			if tt.result.Output != tt.wantOut {
				t.Errorf("Output = %v, want %v", tt.result.Output, tt.wantOut)
			}
			if tt.result.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", tt.result.Message, tt.wantMsg)
			}
		})
	}
}

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: CodeOK},
		{name: "malformed", err: fmt.Errorf("%w: bad", ypath.ErrMalformedExpression), want: CodeUsage},
		{name: "not_found", err: &processor.PathError{Path: "a.b", Err: processor.ErrNotFound}, want: CodeNotFound},
		{name: "mismatch", err: fmt.Errorf("x: %w", processor.ErrStructureMismatch), want: CodeStructure},
		{name: "duplicate", err: processor.ErrDuplicateKey, want: CodeStructure},
		{name: "recursion", err: processor.ErrRecursion, want: CodeStructure},
		{name: "io", err: fmt.Errorf("%w: denied", document.ErrIO), want: CodeIO},
		{name: "load", err: yamlnode.ErrLoad, want: CodeIO},
		{name: "eyaml_missing", err: eyaml.ErrCommandUnavailable, want: CodeTransform},
		{name: "eyaml_failed", err: eyaml.ErrTransformFailure, want: CodeTransform},
		{name: "value", err: yamlnode.ErrValue, want: CodeUsage},
		{name: "unknown", err: errors.New("boom"), want: CodeUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Code(tt.err); got != tt.want {
				t.Errorf("Code(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestFromError(t *testing.T) {
	r := FromError(processor.ErrNotFound)
	if r.ExitCode != CodeNotFound {
		t.Errorf("ExitCode = %d, want %d", r.ExitCode, CodeNotFound)
	}
	if r.Message != "ERROR: "+processor.ErrNotFound.Error()+"\n" {
		t.Errorf("Message = %q", r.Message)
	}

	if ok := FromError(nil); ok.ExitCode != CodeOK || ok.Message != "" {
		t.Errorf("FromError(nil) = %+v, want silent success", ok)
	}
}
