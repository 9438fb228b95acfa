// Package clip makes the final workflow output available for pasting.
// Nothing here is load-bearing for a run; callers treat every failure as
// cosmetic.
package clip

import (
	"errors"
	"fmt"
	"os"

	atotto "github.com/atotto/clipboard"
	osc52 "github.com/aymanbagabas/go-osc52/v2"
	"golang.org/x/term"
)

// Method names the mechanism that ended up holding the content.
type Method string

const (
	MethodNative Method = "native"
	MethodOSC52  Method = "osc52"
	MethodFile   Method = "file"
)

// Result reports where the content landed. FilePath is set only for
// MethodFile.
type Result struct {
	Method   Method
	FilePath string
}

// Seams for tests.
var (
	nativeWriteAll = atotto.WriteAll
	osc52WriteAll  = writeAllOSC52
)

// WriteAll walks the clipboard chain in order of usefulness: the native
// clipboard, then OSC52 (reaches the local clipboard over SSH and in WSL),
// then a temp file as the last resort.
func WriteAll(text string) (Result, error) {
	writers := []struct {
		method Method
		write  func(string) error
	}{
		{MethodNative, nativeWriteAll},
		{MethodOSC52, osc52WriteAll},
	}
	for _, w := range writers {
		if w.write(text) == nil {
			return Result{Method: w.method}, nil
		}
	}

	path, err := spillToFile(text)
	if err != nil {
		return Result{}, err
	}
	return Result{Method: MethodFile, FilePath: path}, nil
}

// Terminals commonly cap OSC52 payloads; workflow outputs can be large.
const osc52LimitBytes = 100_000

func writeAllOSC52(text string) error {
	switch {
	case text == "":
		return errors.New("nothing to copy")
	case len(text) > osc52LimitBytes:
		return fmt.Errorf("output too large for OSC52: %d bytes", len(text))
	case !term.IsTerminal(int(os.Stderr.Fd())):
		return errors.New("stderr is not a terminal")
	}

	seq := osc52.New(text).Limit(osc52LimitBytes)
	switch {
	case os.Getenv("TMUX") != "":
		seq = seq.Tmux()
	case os.Getenv("STY") != "":
		seq = seq.Screen()
	}

	// stderr keeps the escape sequence out of piped stdout.
	_, err := seq.WriteTo(os.Stderr)
	return err
}

func spillToFile(text string) (string, error) {
	f, err := os.CreateTemp("", "stepflow-output-*.txt")
	if err != nil {
		return "", err
	}
	_, werr := f.WriteString(text)
	cerr := f.Close()
	if werr != nil || cerr != nil {
		_ = os.Remove(f.Name())
		return "", errors.Join(werr, cerr)
	}
	return f.Name(), nil
}
