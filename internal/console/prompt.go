package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
)

// InvalidChoice is printed when an answer is not one of the offered choices.
const InvalidChoice = "Please select one of the available options"

type line struct {
	text string
	err  error
}

// Prompter reads answers line by line. Reads honour context cancellation.
type Prompter struct {
	c     *Console
	lines chan line
}

// NewPrompter starts reading in. Prompts are written through c.
func NewPrompter(in io.Reader, c *Console) *Prompter {
	p := &Prompter{c: c, lines: make(chan line)}
	go p.scan(in)
	return p
}

func (p *Prompter) scan(in io.Reader) {
	defer close(p.lines)
	r := bufio.NewReader(in)
	for {
		s, err := r.ReadString('\n')
		if s != "" {
			p.lines <- line{text: strings.TrimRight(s, "\r\n")}
		}
		if err != nil {
			if err != io.EOF {
				p.lines <- line{err: err}
			}
			return
		}
	}
}

// ReadLine returns the next input line. It returns io.EOF once input ends.
func (p *Prompter) ReadLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l, ok := <-p.lines:
		if !ok {
			return "", io.EOF
		}
		return l.text, l.err
	}
}

func (p *Prompter) prompt(s string) {
	fmt.Fprint(p.c.Writer(), s)
}

// Ask prints question and returns the answer, or def when the answer is empty.
func (p *Prompter) Ask(ctx context.Context, question, def string) (string, error) {
	if def != "" {
		p.prompt(fmt.Sprintf("%s (%s): ", question, def))
	} else {
		p.prompt(question + ": ")
	}
	answer, err := p.ReadLine(ctx)
	if err != nil {
		return "", err
	}
	if answer = strings.TrimSpace(answer); answer == "" {
		return def, nil
	}
	return answer, nil
}

// Choose re-prompts until the answer is one of choices.
func (p *Prompter) Choose(ctx context.Context, question string, choices []string) (string, error) {
	for {
		p.prompt(fmt.Sprintf("%s [%s]: ", question, strings.Join(choices, "/")))
		answer, err := p.ReadLine(ctx)
		if err != nil {
			return "", err
		}
		answer = strings.TrimSpace(answer)
		if slices.Contains(choices, answer) {
			return answer, nil
		}
		p.c.Error(InvalidChoice)
	}
}

// ReadUntil collects lines until one whose trimmed, upper-cased value equals
// sentinel. End of input stops collection with what was read.
func (p *Prompter) ReadUntil(ctx context.Context, sentinel string) ([]string, error) {
	var lines []string
	for {
		l, err := p.ReadLine(ctx)
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return lines, err
		}
		if strings.ToUpper(strings.TrimSpace(l)) == sentinel {
			return lines, nil
		}
		lines = append(lines, l)
	}
}
