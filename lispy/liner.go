package lispy

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/glycerine/liner"
)

const historyBaseName = ".lispyhist"

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return historyBaseName
	}
	return filepath.Join(home, historyBaseName)
}

var completionKeywords = []string{`(`, `{`, `(def {`, `(= {`, `(\ {`, `(list `, `(head `, `(tail `, `(join `, `(eval `, `(if `, `(print `, `(error `, `(+ `, `(- `, `(* `, `(/ `, `(== `, `(!= `, `(< `, `(<= `, `(> `, `(>= `, `.quit`, `.ls`, `.gls`, `.dump `, `.save `, `.restore `, `.export `, `.import `, `.verb`}

type Prompter struct {
	prompt   string
	history  string
	prompter *liner.State
}

// NewPrompter takes over the terminal; Close must be called to
// give it back.
func NewPrompter(prompt string) *Prompter {
	p := &Prompter{
		prompt:   prompt,
		history:  historyPath(),
		prompter: liner.NewLiner(),
	}

	p.prompter.SetCtrlCAborts(false)
	p.prompter.SetCompleter(func(line string) (c []string) {
		for _, n := range completionKeywords {
			if strings.HasPrefix(n, strings.ToLower(line)) {
				c = append(c, n)
			}
		}
		return
	})

	if f, err := os.Open(p.history); err == nil {
		p.prompter.ReadHistory(f)
		f.Close()
	}
	return p
}

func (p *Prompter) Close() {
	if p.prompter == nil {
		return
	}
	defer p.prompter.Close()
	if f, err := os.Create(p.history); err != nil {
		log.Print("Error writing history file: ", err)
	} else {
		p.prompter.WriteHistory(f)
		f.Close()
	}
}

func (p *Prompter) Getline(prompt *string) (line string, err error) {
	if prompt == nil {
		line, err = p.prompter.Prompt(p.prompt)
	} else {
		line, err = p.prompter.Prompt(*prompt)
	}
	if err == nil {
		p.prompter.AppendHistory(line)
		return line, nil
	}
	return "", err
}
