// Why this file: ./display/realtime_display.go
// DisplayRenderer renders a QueryResult to the terminal. Adapted from the
// teacher's response renderer (same symbol set, color scheme, border/footer
// idiom) but rendering the fabric's QueryResult shape — answer, sources,
// agent contributions, strategy/cost footer — instead of the teacher's
// code/search/file-change response variants, which have no counterpart in
// the fabric's data model.
package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/Rivega42/hybrid-rag-system/models"
)

// DisplayRenderer handles all CLI display operations.
type DisplayRenderer struct {
	config    DisplayConfig
	colorizer *SyntaxHighlighter
	symbols   SymbolSet
	width     int
	height    int
}

// DisplayConfig holds display configuration.
type DisplayConfig struct {
	Theme            string        `json:"theme"`
	ShowLineNumbers  bool          `json:"show_line_numbers"`
	ShowProgress     bool          `json:"show_progress"`
	StreamingEnabled bool          `json:"streaming_enabled"`
	CharDelay        time.Duration `json:"char_delay"`
	LineDelay        time.Duration `json:"line_delay"`
	MaxWidth         int           `json:"max_width"`
	IndentSize       int           `json:"indent_size"`
	EnableBorders    bool          `json:"enable_borders"`
	EnableIcons      bool          `json:"enable_icons"`
	CompactMode      bool          `json:"compact_mode"`
}

// SymbolSet defines icons/symbols for different elements.
type SymbolSet struct {
	Bullet     string
	LastBullet string
	Pipe       string
	Success    string
	Error      string
	Warning    string
	Info       string
	Search     string
	Code       string
	Test       string
	Docs       string
	Debug      string
	Loading    string
	Arrow      string
	RightArrow string
}

// ColorScheme defines colors for different elements.
type ColorScheme struct {
	Primary    *color.Color
	Secondary  *color.Color
	Success    *color.Color
	Warning    *color.Color
	Error      *color.Color
	Info       *color.Color
	Muted      *color.Color
	Code       CodeColors
	Border     *color.Color
	LineNumber *color.Color
}

// CodeColors defines colors for syntax highlighting.
type CodeColors struct {
	Keyword  *color.Color
	String   *color.Color
	Comment  *color.Color
	Function *color.Color
	Variable *color.Color
	Number   *color.Color
	Type     *color.Color
	Operator *color.Color
}

// NewDisplayRenderer creates a new display renderer.
func NewDisplayRenderer(config DisplayConfig) *DisplayRenderer {
	dr := &DisplayRenderer{
		config:    config,
		colorizer: NewSyntaxHighlighter(),
		width:     120,
		height:    30,
	}

	dr.initializeSymbols()
	dr.initializeColors()

	return dr
}

func (dr *DisplayRenderer) initializeSymbols() {
	if dr.config.EnableIcons {
		dr.symbols = SymbolSet{
			Bullet: "├─", LastBullet: "└─", Pipe: "│",
			Success: "✅", Error: "❌", Warning: "⚠️", Info: "💡",
			Search: "🔍", Code: "📝", Test: "🧪", Docs: "📚",
			Debug: "🐛", Loading: "🔄", Arrow: "→", RightArrow: "▶",
		}
	} else {
		dr.symbols = SymbolSet{
			Bullet: "├─", LastBullet: "└─", Pipe: "│",
			Success: "[✓]", Error: "[✗]", Warning: "[!]", Info: "[i]",
			Search: "[?]", Code: "[C]", Test: "[T]", Docs: "[D]",
			Debug: "[B]", Loading: "[*]", Arrow: "->", RightArrow: ">",
		}
	}
}

func (dr *DisplayRenderer) initializeColors() {
	// Reserved for theme-based palettes; a single dark theme is all
	// SPEC_FULL.md's CLI surface currently needs.
}

// RenderResponse renders a sealed QueryResult with beautiful formatting.
func (dr *DisplayRenderer) RenderResponse(result *models.QueryResult) {
	dr.printHeader(result)

	if result.Error != nil {
		color.New(color.FgRed, color.Bold).Printf("%s %s\n", dr.symbols.Error, *result.Error)
		dr.printFooter(result)
		return
	}

	dr.renderText(result.Answer)

	if len(result.DocumentsRetrieved) > 0 {
		dr.renderSources(result.DocumentsRetrieved)
	}

	if len(result.AgentResults) > 0 {
		dr.renderAgentResults(result.AgentResults)
	}

	dr.printFooter(result)
}

// StreamResponse renders a streaming response character by character.
func (dr *DisplayRenderer) StreamResponse(responseChan <-chan string, metadata *ResponseMetadata) {
	if !dr.config.StreamingEnabled {
		var fullContent strings.Builder
		for chunk := range responseChan {
			fullContent.WriteString(chunk)
		}
		dr.renderText(fullContent.String())
		return
	}

	dr.printStreamingHeader(metadata)

	lineBuffer := strings.Builder{}
	for chunk := range responseChan {
		for _, char := range chunk {
			fmt.Print(string(char))
			lineBuffer.WriteRune(char)

			if dr.config.CharDelay > 0 {
				time.Sleep(dr.config.CharDelay)
			}
			if char == '\n' {
				if dr.config.LineDelay > 0 {
					time.Sleep(dr.config.LineDelay)
				}
				lineBuffer.Reset()
			}
		}
	}

	fmt.Println()
}

func (dr *DisplayRenderer) printHeader(result *models.QueryResult) {
	fmt.Println()

	if dr.config.EnableBorders {
		dr.printBorder("┌", "─", "┐")
	}

	title := fmt.Sprintf("%s Query Result", dr.symbols.RightArrow)
	strategyInfo := fmt.Sprintf("Strategy: %s | Cached: %v", result.StrategyUsed, result.Cached)

	if dr.config.EnableBorders {
		fmt.Printf("│ %s\n", color.New(color.FgCyan, color.Bold).Sprint(title))
		fmt.Printf("│ %s\n", color.New(color.FgYellow).Sprint(strategyInfo))
	} else {
		color.New(color.FgCyan, color.Bold).Println(title)
		color.New(color.FgYellow).Println(strategyInfo)
	}

	if !dr.config.CompactMode {
		meta := fmt.Sprintf("Tokens: %d | Cost: $%.4f | Time: %dms | Confidence: %.0f%%",
			result.TokensUsed, result.CostUSD, result.LatencyMS, result.ConfidenceScore*100)

		if dr.config.EnableBorders {
			fmt.Printf("│ %s\n", color.New(color.FgMagenta).Sprint(meta))
			dr.printBorder("├", "─", "┤")
		} else {
			color.New(color.FgMagenta).Println(meta)
			fmt.Println(strings.Repeat("─", 50))
		}
	}
}

func (dr *DisplayRenderer) printStreamingHeader(metadata *ResponseMetadata) {
	fmt.Println()
	title := fmt.Sprintf("%s %s Generating Response...", dr.symbols.Loading, dr.symbols.RightArrow)
	color.New(color.FgCyan, color.Bold).Println(title)

	if metadata != nil {
		info := fmt.Sprintf("Provider: %s | Estimated tokens: ~%d", metadata.Provider, metadata.EstimatedTokens)
		color.New(color.FgYellow).Println(info)
	}

	fmt.Println(strings.Repeat("─", 50))
	fmt.Println()
}

func (dr *DisplayRenderer) renderText(text string) {
	if text == "" {
		return
	}

	lines := strings.Split(text, "\n")
	var codeBlock strings.Builder
	var codeLang string
	inCode := false

	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if inCode {
				dr.renderHighlightedCode(strings.TrimSuffix(codeBlock.String(), "\n"), codeLang)
				codeBlock.Reset()
				inCode = false
			} else {
				inCode = true
				codeLang = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "```"))
			}
			continue
		}
		if inCode {
			codeBlock.WriteString(line)
			codeBlock.WriteString("\n")
			continue
		}

		if dr.config.ShowLineNumbers && len(lines) > 5 {
			fmt.Print(color.New(color.FgBlue).Sprintf("%3d │ ", i+1))
		} else if dr.config.EnableBorders {
			fmt.Print("│ ")
		}
		fmt.Println(dr.formatTextLine(line))
	}
	fmt.Println()
}

// renderSources lists the documents a classic or research-agent path drew
// its answer from.
func (dr *DisplayRenderer) renderSources(docs []models.Document) {
	fmt.Println()
	color.New(color.FgBlue, color.Bold).Printf("%s Sources (%d)\n", dr.symbols.Search, len(docs))
	fmt.Println(strings.Repeat("─", 50))

	for i, doc := range docs {
		symbol := dr.symbols.Bullet
		if i == len(docs)-1 {
			symbol = dr.symbols.LastBullet
		}
		label := doc.Source
		if label == "" {
			label = doc.DocID
		}
		fmt.Printf("%s %s\n", symbol, color.New(color.FgCyan).Sprint(label))
		if doc.Score != nil {
			fmt.Printf("   score: %.3f\n", *doc.Score)
		}
	}
	fmt.Println()
}

// renderAgentResults lists each orchestrator worker's contribution.
func (dr *DisplayRenderer) renderAgentResults(results []models.AgentResult) {
	fmt.Println()
	color.New(color.FgMagenta, color.Bold).Println("Agent contributions")
	fmt.Println(strings.Repeat("─", 50))

	for i, r := range results {
		symbol := dr.symbols.Bullet
		if i == len(results)-1 {
			symbol = dr.symbols.LastBullet
		}
		fmt.Printf("%s %s (confidence %.0f%%)\n", symbol,
			color.New(color.FgGreen).Sprint(string(r.AgentType)), r.Confidence*100)
		fmt.Printf("   %s\n", r.Result)
	}
	fmt.Println()
}

// renderHighlightedCode renders code with syntax highlighting and line
// numbers, used when the answer text embeds a fenced code block.
func (dr *DisplayRenderer) renderHighlightedCode(code, language string) {
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		fmt.Print(color.New(color.FgBlue).Sprintf("%3d │ ", i+1))
		fmt.Println(dr.colorizer.Highlight(line, language))
	}
}

func (dr *DisplayRenderer) printFooter(result *models.QueryResult) {
	if dr.config.EnableBorders {
		dr.printBorder("└", "─", "┘")
	} else {
		fmt.Println(strings.Repeat("─", 50))
	}

	if !dr.config.CompactMode && result.FallbackUsed {
		color.New(color.FgYellow).Println("(fallback path used)")
	}
	fmt.Println()
}

// ShowProgress displays a progress bar for long operations.
func (dr *DisplayRenderer) ShowProgress(description string, total int) *progressbar.ProgressBar {
	if !dr.config.ShowProgress {
		return nil
	}

	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(50),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionOnCompletion(func() {
			fmt.Printf(" %s Complete!\n", dr.symbols.Success)
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionFullWidth(),
	)
}

// ShowSpinner shows a spinner for indeterminate progress.
func (dr *DisplayRenderer) ShowSpinner(description string) *Spinner {
	if !dr.config.ShowProgress {
		return nil
	}

	spinner := NewSpinner(description)
	spinner.Start()
	return spinner
}

func (dr *DisplayRenderer) printBorder(left, middle, right string) {
	fmt.Printf("%s%s%s\n", left, strings.Repeat(middle, dr.width-2), right)
}

func (dr *DisplayRenderer) formatTextLine(line string) string {
	line = strings.ReplaceAll(line, "**", "")

	parts := strings.Split(line, "`")
	for i := 1; i < len(parts); i += 2 {
		if i < len(parts) {
			parts[i] = color.New(color.FgYellow, color.BgBlack).Sprint(parts[i])
		}
	}

	return strings.Join(parts, "")
}

// ResponseMetadata holds streaming response metadata.
type ResponseMetadata struct {
	Provider        string
	Agent           string
	EstimatedTokens int
}

// Spinner represents a loading spinner.
type Spinner struct {
	description string
	running     bool
	chars       []string
	current     int
}

// NewSpinner creates a new spinner.
func NewSpinner(description string) *Spinner {
	return &Spinner{
		description: description,
		chars:       []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	}
}

// Start starts the spinner.
func (s *Spinner) Start() {
	s.running = true
	go func() {
		for s.running {
			fmt.Printf("\r%s %s", s.chars[s.current], s.description)
			s.current = (s.current + 1) % len(s.chars)
			time.Sleep(100 * time.Millisecond)
		}
		fmt.Print("\r")
	}()
}

// Stop stops the spinner.
func (s *Spinner) Stop() {
	s.running = false
	time.Sleep(150 * time.Millisecond)
}
