// cmd/exprsh/main.go — interactive expression shell
//
// Reads expressions, prints their collapsed form and value. Uses line
// editing and history on a terminal and plain line reading otherwise.
//
// Usage:
//   go run ./cmd/exprsh [-symbols symbols.yaml]
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/peterh/liner"
	"golang.org/x/term"

	"github.com/njchilds90/goexpr"
)

const (
	historyFile = ".goexpr_history"
	prompt      = "» "
)

func main() {
	symbolsPath := flag.String("symbols", "", "YAML file with extra constants and function names")
	flag.Parse()

	if *symbolsPath != "" {
		table, err := goexpr.LoadSymbolsYAML(*symbolsPath)
		if err != nil {
			log.Fatal(err)
		}
		if err := goexpr.InstallSymbols(table); err != nil {
			log.Fatal(err)
		}
	}

	s := newSession()
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		runBasic(s, os.Stdin, os.Stdout)
		return
	}
	runREPL(s)
}

// runBasic handles piped input: one expression per line, no prompt.
func runBasic(s *session, in io.Reader, out io.Writer) {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		res, quit := s.handle(sc.Text())
		if quit {
			return
		}
		if res != "" {
			fmt.Fprintln(out, res)
		}
	}
	if err := sc.Err(); err != nil {
		log.Printf("read input: %v", err)
	}
}

func runREPL(s *session) {
	fmt.Println("goexpr shell — :help for commands")

	histPath, err := historyPath()
	if err != nil {
		log.Printf("history disabled: %v", err)
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	// Load history (best-effort)
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}

	for {
		line, err := ln.Prompt(prompt)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, liner.ErrPromptAborted) {
				log.Printf("read input: %v", err)
			}
			fmt.Println()
			break
		}
		res, quit := s.handle(line)
		if quit {
			break
		}
		if res != "" {
			fmt.Println(res)
		}
		ln.AppendHistory(line)
	}

	// Persist history (best-effort)
	if histPath == "" {
		return
	}
	if f, err := os.Create(histPath); err == nil {
		_, _ = ln.WriteHistory(f)
		_ = f.Close()
	}
}

// historyPath locates the history file in the user's home directory.
func historyPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, historyFile), nil
}
