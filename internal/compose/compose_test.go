package compose

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/llehouerou/albumgallery/internal/layout"
)

type fakeRunner struct {
	name   string
	args   []string
	output []byte
	err    error
	// write creates the last argument as a file of this many bytes
	write int
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.name = name
	f.args = args
	if f.err == nil && f.write > 0 && len(args) > 0 {
		if err := os.WriteFile(args[len(args)-1], make([]byte, f.write), 0o600); err != nil {
			return nil, err
		}
	}
	return f.output, f.err
}

func TestArgs(t *testing.T) {
	plan := layout.NewPlan(3, 600)
	files := []string{"/a/cover.jpg", "/b/cover.png", "/c/folder.jpg"}

	got := Args(plan, files, Options{Background: "#202020", Output: "out.png"})

	want := []string{
		"-background", "#202020",
		"-tile", "3x1",
		"-geometry", "600x600+0+0",
		"/a/cover.jpg", "/b/cover.png", "/c/folder.jpg",
		"out.png",
	}
	if !slices.Equal(got, want) {
		t.Errorf("Args() = %q, want %q", got, want)
	}
}

func TestArgs_Defaults(t *testing.T) {
	got := Args(layout.NewPlan(1, 100), []string{"x.jpg"}, Options{})

	if got[1] != "black" {
		t.Errorf("background = %q, want black", got[1])
	}
	if last := got[len(got)-1]; last != DefaultOutput {
		t.Errorf("output = %q, want %q", last, DefaultOutput)
	}
}

func TestRender(t *testing.T) {
	out := filepath.Join(t.TempDir(), "sub", "collage.jpg")
	runner := &fakeRunner{write: 2048}
	c := New(runner, Options{Command: "magick-montage", Output: out})

	res, err := c.Render(context.Background(), layout.NewPlan(2, 400), []string{"a.jpg", "b.jpg"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if runner.name != "magick-montage" {
		t.Errorf("command = %q, want magick-montage", runner.name)
	}
	if last := runner.args[len(runner.args)-1]; last != out {
		t.Errorf("output arg = %q, want %q", last, out)
	}
	if want := (Result{Output: out, Bytes: 2048}); res != want {
		t.Errorf("Render() = %+v, want %+v", res, want)
	}
}

func TestRender_NoItems(t *testing.T) {
	runner := &fakeRunner{}
	c := New(runner, Options{})

	_, err := c.Render(context.Background(), layout.NewPlan(0, 400), nil)

	if !errors.Is(err, ErrNoItems) {
		t.Errorf("Render() error = %v, want ErrNoItems", err)
	}
	if runner.name != "" {
		t.Errorf("runner invoked with %q", runner.name)
	}
}

func TestRender_ZeroGeometry(t *testing.T) {
	c := New(&fakeRunner{}, Options{})

	_, err := c.Render(context.Background(), layout.NewPlan(4, 1), []string{"a", "b", "c", "d"})

	if !errors.Is(err, ErrNoItems) {
		t.Errorf("Render() error = %v, want ErrNoItems", err)
	}
}

func TestRender_GridTooSmall(t *testing.T) {
	c := New(&fakeRunner{}, Options{Output: filepath.Join(t.TempDir(), "o.jpg")})

	_, err := c.Render(context.Background(), layout.NewPlan(2, 400), []string{"a", "b", "c", "d", "e"})

	if err == nil {
		t.Error("Render() expected error for a grid smaller than the file list")
	}
}

func TestRender_CommandFailure(t *testing.T) {
	errExit := errors.New("exit status 1")
	runner := &fakeRunner{err: errExit, output: []byte("montage: unable to open image\n")}
	c := New(runner, Options{Output: filepath.Join(t.TempDir(), "o.jpg")})

	_, err := c.Render(context.Background(), layout.NewPlan(1, 100), []string{"missing.jpg"})

	if !errors.Is(err, errExit) {
		t.Fatalf("Render() error = %v, want %v", err, errExit)
	}
	if !strings.Contains(err.Error(), "unable to open image") {
		t.Errorf("error %q does not carry the command output", err)
	}
}
