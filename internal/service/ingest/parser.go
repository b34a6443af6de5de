package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sanjanak/grocery-graph/backend/internal/model/grocery"
	"github.com/sanjanak/grocery-graph/backend/internal/service/ai"
)

// Parser turns raw receipt text into structured purchases through the
// generation boundary.
type Parser struct {
	generator ai.Generator
}

// NewParser wires the parser to a generation boundary.
func NewParser(generator ai.Generator) *Parser {
	return &Parser{generator: generator}
}

// Parse extracts purchases from receipt text. The generator output is
// untrusted; it is defensively unwrapped and normalized before use.
func (p *Parser) Parse(ctx context.Context, text string) ([]grocery.Purchase, error) {
	raw, err := p.generator.Generate(ctx, buildParsePrompt(text))
	if err != nil {
		return nil, fmt.Errorf("bill parsing failed: %w", err)
	}
	return ParsePurchases(raw)
}

func buildParsePrompt(text string) string {
	var b strings.Builder
	b.WriteString("Extract the grocery items from the following receipt text.\n\n")
	b.WriteString(text)
	b.WriteString("\n\nReturn a JSON array of objects with keys \"item\", \"quantity\", \"price\", and \"category\". ")
	b.WriteString("Prices and quantities are numbers. Use a sensible grocery category for each item. ")
	b.WriteString("Output only the JSON.")
	return b.String()
}

// rawPurchase tolerates the shapes generators actually produce: "name"
// instead of "item", and quantity/price as either numbers or strings.
type rawPurchase struct {
	Item     string          `json:"item"`
	Name     string          `json:"name"`
	Quantity json.RawMessage `json:"quantity"`
	Price    json.RawMessage `json:"price"`
	Category string          `json:"category"`
}

// ParsePurchases decodes generator output into purchases. It accepts a bare
// JSON array or an {"items": [...]} wrapper, with or without code fences.
func ParsePurchases(raw string) ([]grocery.Purchase, error) {
	payload := extractJSON(raw)
	if payload == "" {
		return nil, fmt.Errorf("no JSON payload in parser output")
	}

	var entries []rawPurchase
	if strings.HasPrefix(payload, "{") {
		var wrapper struct {
			Items []rawPurchase `json:"items"`
		}
		if err := json.Unmarshal([]byte(payload), &wrapper); err != nil {
			return nil, fmt.Errorf("failed to decode parser output: %w", err)
		}
		entries = wrapper.Items
	} else {
		if err := json.Unmarshal([]byte(payload), &entries); err != nil {
			return nil, fmt.Errorf("failed to decode parser output: %w", err)
		}
	}

	purchases := make([]grocery.Purchase, 0, len(entries))
	for _, entry := range entries {
		item := strings.TrimSpace(entry.Item)
		if item == "" {
			item = strings.TrimSpace(entry.Name)
		}
		if item == "" {
			continue
		}

		category := strings.TrimSpace(entry.Category)
		if category == "" || strings.EqualFold(category, "uncategorized") {
			category = CategoryFor(item)
		}

		purchases = append(purchases, grocery.Purchase{
			Item:     item,
			Quantity: numericQuantity(entry.Quantity),
			Price:    numericValue(entry.Price),
			Category: category,
		})
	}
	return purchases, nil
}

// extractJSON slices the first JSON array or object out of surrounding prose
// or code fences.
func extractJSON(raw string) string {
	trimmed := strings.TrimSpace(raw)

	arrayStart := strings.Index(trimmed, "[")
	objectStart := strings.Index(trimmed, "{")
	if arrayStart != -1 && (objectStart == -1 || arrayStart < objectStart) {
		if end := strings.LastIndex(trimmed, "]"); end > arrayStart {
			return trimmed[arrayStart : end+1]
		}
		return ""
	}
	if objectStart != -1 {
		if end := strings.LastIndex(trimmed, "}"); end > objectStart {
			return trimmed[objectStart : end+1]
		}
	}
	return ""
}

var numberPattern = regexp.MustCompile(`\d+(\.\d+)?`)

// numericQuantity reduces quantity values like "1.05 lb" or "2 pcs" to their
// numeric part, defaulting to 1 when no number is present.
func numericQuantity(raw json.RawMessage) float64 {
	value := numericValue(raw)
	if value == 0 {
		return 1
	}
	return value
}

func numericValue(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}

	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		return number
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return 0
	}
	match := numberPattern.FindString(text)
	if match == "" {
		return 0
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return value
}
