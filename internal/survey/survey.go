// Package survey collects a user's consumption, one number per subcategory
// of a configured taxonomy, over an interactive text prompt.
package survey

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rshade/carboncalc/internal/logging"
)

// InvalidInputMessage is printed after a non-numeric answer.
const InvalidInputMessage = "Veuillez entrer une valeur correcte."

// ItemPlaceholder is replaced in prompt templates by the lowercased subcategory.
const ItemPlaceholder = "{item}"

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// ErrInputClosed is returned when input ends before every subcategory was answered.
const ErrInputClosed = constError("input closed before collection completed")

// Category is one taxonomy node and its ordered subcategories.
type Category struct {
	Name          string
	Subcategories []string
}

// Entry is one answered subcategory. Quantity is in the unit the prompt asked for.
type Entry struct {
	Category    string
	Subcategory string
	Quantity    float64
}

// Consumption holds the answers in taxonomy order.
type Consumption struct {
	Entries []Entry
}

// Quantity returns the answer recorded for subcategory.
func (c Consumption) Quantity(subcategory string) (float64, bool) {
	for _, e := range c.Entries {
		if e.Subcategory == subcategory {
			return e.Quantity, true
		}
	}
	return 0, false
}

// Prompter renders the question asked for a subcategory.
type Prompter struct {
	// Templates maps a subcategory label to its prompt template.
	Templates map[string]string
	// Default is used for subcategories without a template.
	Default string

	lower cases.Caser
}

// NewPrompter returns a Prompter over the given templates.
func NewPrompter(templates map[string]string, fallback string) *Prompter {
	return &Prompter{
		Templates: templates,
		Default:   fallback,
		lower:     cases.Lower(language.French),
	}
}

// Question returns the prompt text for subcategory.
func (p *Prompter) Question(subcategory string) string {
	tmpl, ok := p.Templates[subcategory]
	if !ok {
		tmpl = p.Default
	}
	if tmpl == "" {
		tmpl = ItemPlaceholder + " ? "
	}
	return strings.ReplaceAll(tmpl, ItemPlaceholder, p.lower.String(subcategory))
}

// line is one read from the input. ok is false once input has ended.
type line struct {
	text string
	err  error
	ok   bool
}

// Collector asks the questions on out and reads answers from in.
type Collector struct {
	in       io.Reader
	out      io.Writer
	prompter *Prompter

	start sync.Once
	lines chan line
}

// NewCollector returns a Collector reading from in and writing to out.
func NewCollector(in io.Reader, out io.Writer, prompter *Prompter) *Collector {
	return &Collector{
		in:       in,
		out:      out,
		prompter: prompter,
		lines:    make(chan line, 1),
	}
}

// readLines scans the input in the background so a blocked read never
// holds up cancellation. The goroutine ends with the input.
func (c *Collector) readLines() {
	sc := bufio.NewScanner(c.in)
	for sc.Scan() {
		c.lines <- line{text: sc.Text(), ok: true}
	}
	c.lines <- line{err: sc.Err()}
	close(c.lines)
}

// Collect prompts once per subcategory of taxonomy, repeating a question
// until a number is entered. It returns ErrInputClosed if input ends early
// and never returns a partial Consumption.
func (c *Collector) Collect(ctx context.Context, taxonomy []Category) (Consumption, error) {
	c.start.Do(func() { go c.readLines() })
	log := logging.FromContext(ctx).With().Str("component", "survey").Logger()

	var result Consumption
	for _, cat := range taxonomy {
		fmt.Fprintf(c.out, "\n%s :\n", cat.Name)
		for _, sub := range cat.Subcategories {
			q, err := c.ask(ctx, sub)
			if err != nil {
				return Consumption{}, err
			}
			log.Debug().Str("category", cat.Name).Str("subcategory", sub).Float64("quantity", q).Msg("answer recorded")
			result.Entries = append(result.Entries, Entry{Category: cat.Name, Subcategory: sub, Quantity: q})
		}
	}
	return result, nil
}

func (c *Collector) ask(ctx context.Context, subcategory string) (float64, error) {
	question := c.prompter.Question(subcategory)
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		fmt.Fprint(c.out, question)

		var l line
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case l = <-c.lines:
		}
		if !l.ok {
			if l.err != nil {
				return 0, fmt.Errorf("reading answer for %q: %w", subcategory, l.err)
			}
			return 0, fmt.Errorf("%w: no answer for %q", ErrInputClosed, subcategory)
		}

		v, err := ParseQuantity(l.text)
		if err == nil {
			return v, nil
		}
		fmt.Fprintln(c.out, InvalidInputMessage)
	}
}

// ParseQuantity parses an answer. Surrounding whitespace is ignored and a
// comma is accepted as decimal separator, except before exactly three digits
// ("1,000"), which reads as a thousands separator and is rejected.
// NaN and infinities are rejected.
func ParseQuantity(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ','); i >= 0 && strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		if frac := s[i+1:]; len(frac) == 3 && strings.Trim(frac, "0123456789") == "" {
			return 0, fmt.Errorf("quantity %q is ambiguous: comma before three digits", s)
		}
		s = s[:i] + "." + s[i+1:]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("quantity %q is not finite", s)
	}
	return v, nil
}
