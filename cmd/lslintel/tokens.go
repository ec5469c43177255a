package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/lsl-tools/lslintel/internal/semtok"
)

var colorOutput bool

var tokensCmd = &cobra.Command{
	Use:   "tokens <file>",
	Short: "Print the semantic tokens computed for a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokens,
}

func init() {
	tokensCmd.Flags().BoolVar(&colorOutput, "color", false, "render the source with one ANSI style per token type")
}

// tokenStyles maps each semantic token type to a terminal style, the way
// cmd/nerd/ui/styles.go assigns a lipgloss.Color per semantic category.
var tokenStyles = map[semtok.TokenType]lipgloss.Style{
	semtok.TypeKeyword:    lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
	semtok.TypeType:       lipgloss.NewStyle().Foreground(lipgloss.Color("81")),
	semtok.TypeFunction:   lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
	semtok.TypeVariable:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	semtok.TypeParameter:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Italic(true),
	semtok.TypeEnumMember: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	semtok.TypeMacro:      lipgloss.NewStyle().Foreground(lipgloss.Color("141")),
	semtok.TypeString:     lipgloss.NewStyle().Foreground(lipgloss.Color("106")),
	semtok.TypeNumber:     lipgloss.NewStyle().Foreground(lipgloss.Color("173")),
	semtok.TypeComment:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Faint(true),
	semtok.TypeRegexp:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	semtok.TypeOperator:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
}

func runTokens(cmd *cobra.Command, args []string) error {
	path := args[0]

	res, err := runFile(path, nil)
	if err != nil {
		return err
	}

	if colorOutput {
		src, rerr := os.ReadFile(path)
		if rerr != nil {
			return fmt.Errorf("read %s: %w", path, rerr)
		}

		fmt.Println(renderColored(string(src), res.Tokens.Data))

		return nil
	}

	printRaw(res.Tokens.Data)

	return nil
}

func printRaw(data []uint32) {
	for i := 0; i+5 <= len(data); i += 5 {
		fmt.Printf("deltaLine=%d deltaChar=%d length=%d type=%s mods=%#x\n",
			data[i], data[i+1], data[i+2], semtok.TokenType(data[i+3]), data[i+4])
	}
}

// renderColored replays the delta-encoded payload back into absolute
// (line, char) positions and applies one lipgloss style per token,
// leaving everything outside a token's span unstyled.
func renderColored(src string, data []uint32) string {
	lines := strings.Split(src, "\n")

	type span struct {
		line, char, length int
		typ                semtok.TokenType
	}

	var spans []span

	line, char := 0, 0

	for i := 0; i+5 <= len(data); i += 5 {
		deltaLine, deltaChar, length, typ := data[i], data[i+1], data[i+2], semtok.TokenType(data[i+3])

		if deltaLine > 0 {
			line += int(deltaLine)
			char = int(deltaChar)
		} else {
			char += int(deltaChar)
		}

		spans = append(spans, span{line: line, char: char, length: int(length), typ: typ})
	}

	byLine := make(map[int][]span)
	for _, s := range spans {
		byLine[s.line] = append(byLine[s.line], s)
	}

	var out strings.Builder

	for i, text := range lines {
		cursor := 0
		runes := []rune(text)

		for _, s := range byLine[i] {
			if s.char > len(runes) || s.char < cursor {
				continue
			}

			out.WriteString(string(runes[cursor:s.char]))

			end := s.char + s.length
			if end > len(runes) {
				end = len(runes)
			}

			style, ok := tokenStyles[s.typ]
			if !ok {
				style = lipgloss.NewStyle()
			}

			out.WriteString(style.Render(string(runes[s.char:end])))
			cursor = end
		}

		if cursor < len(runes) {
			out.WriteString(string(runes[cursor:]))
		}

		if i < len(lines)-1 {
			out.WriteString("\n")
		}
	}

	return out.String()
}
