package extract

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Script names of the built-in pattern groups.
const (
	ScriptHan   = "han"
	ScriptLatin = "latin"
)

// literalExpr matches one single- or double-quoted literal on a single line.
const literalExpr = `(?:'(?P<sq>(?:[^'\\\n]|\\.)*)'|"(?P<dq>(?:[^"\\\n]|\\.)*)")`

// Pattern locates a UI literal: Prefix is the code leading up to the opening
// quote and may span lines inside one statement.
type Pattern struct {
	ID         string
	ContextTag string
	re         *regexp.Regexp
	sq, dq     int
}

// NewPattern compiles prefix followed by a quoted literal.
func NewPattern(id, contextTag, prefix string) (Pattern, error) {
	re, err := regexp.Compile(prefix + literalExpr)
	if err != nil {
		return Pattern{}, fmt.Errorf("pattern %s: %w", id, err)
	}

	return Pattern{
		ID:         id,
		ContextTag: contextTag,
		re:         re,
		sq:         re.SubexpIndex("sq"),
		dq:         re.SubexpIndex("dq"),
	}, nil
}

// Validator decides whether a normalized literal belongs to a script group.
type Validator func(text string) bool

// PatternGroup is an ordered list of patterns sharing a script heuristic.
type PatternGroup struct {
	Script    string
	Locale    string
	MinLength int
	Accept    Validator
	Patterns  []Pattern
}

// PatternSet is the ordered list of groups tried by the scanner. When two
// patterns reach the same literal, the earlier one wins.
type PatternSet struct {
	Groups []PatternGroup
}

// PatternSpec describes a pattern for CompilePatternSet.
type PatternSpec struct {
	ID         string
	ContextTag string
	Prefix     string
}

// widgetPatterns are tried most specific first.
var widgetPatterns = []PatternSpec{
	{"button_child", "button", `\b(?:Elevated|Text|Outlined|Filled|Icon)Button(?:\.icon|\.tonal)?\s*\([^;{}]*?\b(?:child|label)\s*:\s*(?:const\s+)?Text\s*\(\s*`},
	{"dialog_text", "dialog", `\b(?:AlertDialog|SimpleDialog|CupertinoAlertDialog)\s*\([^;{}]*?\b(?:title|content)\s*:\s*(?:const\s+)?Text\s*\(\s*`},
	{"snackbar_content", "message", `\bSnackBar\s*\([^;{}]*?\bcontent\s*:\s*(?:const\s+)?Text\s*\(\s*`},
	{"toast", "message", `\b(?:showToast|Fluttertoast\.showToast|Toast\.show)\s*\(\s*(?:msg\s*:\s*)?`},
	{"appbar_title", "title", `\b(?:Sliver)?AppBar\s*\([^;{}]*?\btitle\s*:\s*(?:const\s+)?Text\s*\(\s*`},
	{"tab_text", "tab", `\bTab\s*\([^;{}]*?\btext\s*:\s*`},
	{"nav_label", "label", `\b(?:BottomNavigationBarItem|NavigationDestination|NavigationRailDestination)\s*\([^;{}]*?\blabel\s*:\s*`},
	{"menu_item", "menu", `\b(?:PopupMenuItem|DropdownMenuItem|MenuItemButton)\s*(?:<[^>]*>)?\s*\([^;{}]*?\bchild\s*:\s*(?:const\s+)?Text\s*\(\s*`},
	{"hint_prop", "hint", `\b(?:hintText|helperText|placeholder)\s*:\s*`},
	{"label_prop", "label", `\b(?:labelText|label|semanticsLabel)\s*:\s*`},
	{"tooltip_prop", "tooltip", `\b(?:tooltip|message)\s*:\s*`},
	{"error_prop", "message", `\berrorText\s*:\s*`},
	{"title_prop", "title", `\b(?:title|subtitle|header)\s*:\s*`},
	{"text_span", "text", `\bTextSpan\s*\([^;{}]*?\btext\s*:\s*`},
	{"text_widget", "text", `\b(?:Text|SelectableText|AutoSizeText)\s*\(\s*`},
}

// hanPatterns add string constants, which only CJK text makes safe to pick.
var hanPatterns = []PatternSpec{
	{"string_const", "constant", `\b(?:static\s+)?(?:const|final)\s+(?:String\s+)?[A-Za-z_]\w*\s*=\s*`},
	{"return_string", "message", `\breturn\s+`},
}

var (
	hanRe        = regexp.MustCompile(`\p{Han}`)
	latinShapeRe = regexp.MustCompile(`^[A-Z][A-Za-z']*(?:,?[ \-][A-Za-z][A-Za-z']*)*[.!?…]?$`)
	camelRe      = regexp.MustCompile(`^[A-Za-z][a-z]+[A-Z][A-Za-z]*$`)
)

// latinExclusions are capitalized words that are almost never UI copy.
var latinExclusions = map[string]struct{}{
	"Ok": {}, "No": {}, "On": {}, "Off": {}, "Up": {}, "Go": {}, "Do": {}, "Is": {}, "If": {}, "Or": {}, "At": {},
	"Debug": {}, "Error": {}, "Warning": {}, "Info": {}, "Trace": {}, "Fatal": {},
	"String": {}, "Red": {}, "Green": {}, "Blue": {}, "Black": {}, "White": {}, "Gray": {},
	"Yellow": {}, "Purple": {}, "Bold": {}, "Italic": {}, "Normal": {},
	"Left": {}, "Right": {}, "Center": {}, "Top": {}, "Bottom": {},
	"Widget": {}, "State": {}, "Builder": {}, "Provider": {}, "Manager": {}, "Controller": {},
	"Repository": {}, "Service": {}, "Factory": {}, "Singleton": {}, "Interface": {},
	"Abstract": {}, "Implementation": {}, "Extension": {}, "Exception": {}, "Handler": {},
	"Listener": {}, "Observer": {}, "Strategy": {}, "Decorator": {},
	"Adapter": {}, "Facade": {}, "Proxy": {}, "Command": {}, "Template": {},
}

// AcceptHan accepts text containing at least one Han character.
func AcceptHan(text string) bool {
	return hanRe.MatchString(text)
}

// AcceptLatin accepts capitalized Latin word shapes such as "Save file" or
// "Are you sure?" and rejects identifiers, constants and technical terms.
func AcceptLatin(text string) bool {
	n := utf8.RuneCountInString(text)
	if n < 2 || n > 100 {
		return false
	}

	if !latinShapeRe.MatchString(text) {
		return false
	}

	if _, excluded := latinExclusions[strings.TrimRight(text, ".!?…")]; excluded {
		return false
	}

	letters := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return r
		}
		return -1
	}, text)
	if len(letters) > 3 && strings.ToUpper(letters) == letters {
		return false
	}

	if !strings.Contains(text, " ") && camelRe.MatchString(text) {
		return false
	}

	return true
}

// GroupOptions selects and localizes the built-in groups.
type GroupOptions struct {
	HanLocale   string
	LatinLocale string
	// Latin enables the capitalized-Latin group.
	Latin bool
	// MinLength raises the minimum literal length in runes.
	MinLength int
}

// DefaultPatternSet returns the built-in Flutter widget patterns: a Han group
// and, when enabled, a Latin group.
func DefaultPatternSet(opts GroupOptions) *PatternSet {
	if opts.HanLocale == "" {
		opts.HanLocale = "zh"
	}

	if opts.LatinLocale == "" {
		opts.LatinLocale = "en"
	}

	set := &PatternSet{}

	han := PatternGroup{Script: ScriptHan, Locale: opts.HanLocale, MinLength: max(1, opts.MinLength), Accept: AcceptHan}
	han.Patterns = mustCompile(append(append([]PatternSpec{}, widgetPatterns...), hanPatterns...))
	set.Groups = append(set.Groups, han)

	if opts.Latin {
		latin := PatternGroup{Script: ScriptLatin, Locale: opts.LatinLocale, MinLength: max(2, opts.MinLength), Accept: AcceptLatin}
		latin.Patterns = mustCompile(widgetPatterns)
		set.Groups = append(set.Groups, latin)
	}

	return set
}

// GroupSpec describes a user-defined pattern group.
type GroupSpec struct {
	Script   string
	Locale   string
	Patterns []PatternSpec
}

// CompilePatternSet builds groups from specs. Script selects the validator:
// "han" or "latin".
func CompilePatternSet(specs []GroupSpec) (*PatternSet, error) {
	set := &PatternSet{}

	for _, gs := range specs {
		g := PatternGroup{Script: gs.Script, Locale: gs.Locale}

		switch gs.Script {
		case ScriptHan:
			g.Accept, g.MinLength = AcceptHan, 1
		case ScriptLatin:
			g.Accept, g.MinLength = AcceptLatin, 2
		default:
			return nil, fmt.Errorf("unknown script %q (want %s or %s)", gs.Script, ScriptHan, ScriptLatin)
		}

		if gs.Locale == "" {
			return nil, fmt.Errorf("pattern group %s has no locale", gs.Script)
		}

		for _, ps := range gs.Patterns {
			p, err := NewPattern(ps.ID, ps.ContextTag, ps.Prefix)
			if err != nil {
				return nil, err
			}

			g.Patterns = append(g.Patterns, p)
		}

		set.Groups = append(set.Groups, g)
	}

	if len(set.Groups) == 0 {
		return nil, fmt.Errorf("pattern set is empty")
	}

	return set, nil
}

func mustCompile(specs []PatternSpec) []Pattern {
	out := make([]Pattern, 0, len(specs))

	for _, s := range specs {
		p, err := NewPattern(s.ID, s.ContextTag, s.Prefix)
		if err != nil {
			panic(err)
		}

		out = append(out, p)
	}

	return out
}
