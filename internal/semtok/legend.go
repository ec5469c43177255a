// Package semtok is the top-level consumer of every other pipeline stage
// (spec §4.5): it classifies each token the preprocessor/lexer produced
// into an LSP semantic-token type and modifier bitmask, resolves
// readonly/write-site status per declaration, and runs the 3-way
// merge-conflict pre-pass (spec §4.6) before any of that classification
// happens. The delta-encoding shape is grounded on
// internal/semtok_ref/server.go's handleSemanticTokensFull (the `encode`
// closure and its line/char cursor).
package semtok

// TokenType is an index into the fixed LSP semantic-token-type legend
// (spec §4.5). Index order is part of the wire protocol: a client decodes
// tokenType as an index into the legend it received from initialize, so
// this order must never change independently of Legend().
type TokenType int

const (
	TypeNamespace TokenType = iota
	TypeType
	TypeClass
	TypeEnum
	TypeInterface
	TypeStruct
	TypeTypeParameter
	TypeParameter
	TypeVariable
	TypeProperty
	TypeEnumMember
	TypeEvent
	TypeFunction
	TypeMethod
	TypeMacro
	TypeKeyword
	TypeModifier
	TypeComment
	TypeString
	TypeNumber
	TypeRegexp
	TypeOperator
)

var typeNames = [...]string{
	"namespace", "type", "class", "enum", "interface", "struct", "typeParameter",
	"parameter", "variable", "property", "enumMember", "event", "function", "method",
	"macro", "keyword", "modifier", "comment", "string", "number", "regexp", "operator",
}

func (t TokenType) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "unknown"
	}

	return typeNames[t]
}

// Legend returns the token-type legend in protocol order, for advertising
// in an `initialize` response's semanticTokensProvider.legend.tokenTypes.
func Legend() []string {
	return append([]string(nil), typeNames[:]...)
}

// Modifier is a single bit position into the fixed LSP modifier legend
// (spec §4.5).
type Modifier int

const (
	ModDeclaration Modifier = iota
	ModDefinition
	ModReadonly
	ModDeprecated
	ModStatic
	ModAbstract
	ModAsync
	ModModification
	ModDocumentation
	ModDefaultLibrary
)

var modNames = [...]string{
	"declaration", "definition", "readonly", "deprecated", "static", "abstract",
	"async", "modification", "documentation", "defaultLibrary",
}

func (m Modifier) String() string {
	if m < 0 || int(m) >= len(modNames) {
		return "unknown"
	}

	return modNames[m]
}

// ModifierLegend returns the modifier legend in protocol order.
func ModifierLegend() []string {
	return append([]string(nil), modNames[:]...)
}

// Bit returns this modifier's contribution to a token's modifier bitmask.
func (m Modifier) Bit() uint32 {
	return 1 << uint(m)
}

// Token is one classified semantic token, in absolute 0-based (line, char)
// position with char counted in UTF-16 code units, before delta encoding.
type Token struct {
	Line      int
	Char      int
	Length    int
	Type      TokenType
	Modifiers uint32
}

// Encode delta-encodes tokens into the flat LSP wire format: 5 uint32s per
// token (deltaLine, deltaChar, length, tokenType, tokenModifiers), per
// spec §3/§8's "5-integer LSP encoding". tokens must already be sorted by
// (Line, Char) ascending — Encode does not sort them.
func Encode(tokens []Token) []uint32 {
	data := make([]uint32, 0, len(tokens)*5)

	prevLine, prevChar := 0, 0

	for _, t := range tokens {
		deltaLine := t.Line - prevLine
		deltaChar := t.Char

		if deltaLine == 0 {
			deltaChar = t.Char - prevChar
		}

		data = append(data, uint32(deltaLine), uint32(deltaChar), uint32(t.Length), uint32(t.Type), t.Modifiers)

		prevLine = t.Line
		prevChar = t.Char
	}

	return data
}
