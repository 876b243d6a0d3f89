package menu

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	footerRe = regexp.MustCompile(`^Page: ([1-9]+) List: ([a-zA-Z_]+) Selection: (True|False)$`)
	pageRe   = regexp.MustCompile(`^[1-9]+$`)
)

// State is the position of a rendered menu, as written in its footer.
type State struct {
	Page      int
	Menu      string
	Selection bool
}

// Encode renders the footer text.
func (s State) Encode() string {
	sel := "False"
	if s.Selection {
		sel = "True"
	}
	return fmt.Sprintf("Page: %d List: %s Selection: %s", s.Page, s.Menu, sel)
}

// Validate reports whether the state can round-trip through its footer. Page
// numbers are written with the digits 1-9 only, so a page like 10 cannot be
// encoded.
func (s State) Validate() error {
	if s.Page < 1 || !pageRe.MatchString(strconv.Itoa(s.Page)) {
		return fmt.Errorf("%w: page %d cannot be encoded", ErrPageOutOfRange, s.Page)
	}
	if !nameRe.MatchString(s.Menu) {
		return fmt.Errorf("%w: name %q cannot be encoded", ErrInvalidMenu, s.Menu)
	}
	return nil
}

// Decode parses footer text. Anything that is not exactly an encoded state is
// ErrCorruptMenu.
func Decode(footer string) (State, error) {
	m := footerRe.FindStringSubmatch(footer)
	if m == nil {
		return State{}, fmt.Errorf("%w: bad footer %q", ErrCorruptMenu, footer)
	}
	page, err := strconv.Atoi(m[1])
	if err != nil {
		return State{}, fmt.Errorf("%w: bad page %q", ErrCorruptMenu, m[1])
	}
	return State{
		Page:      page,
		Menu:      m[2],
		Selection: m[3] == "True",
	}, nil
}
