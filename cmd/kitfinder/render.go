package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"

	"github.com/routerhaus/kitfinder/catalog"
	"github.com/routerhaus/kitfinder/config"
	"github.com/routerhaus/kitfinder/models"
	"github.com/routerhaus/kitfinder/view"
)

func printResults(st *catalog.State) error {
	pterm.DefaultSection.Println(fmt.Sprintf("%d of %d kits · sort: %s", st.MatchCount(), len(st.Items()), st.Sort()))

	if chips := st.ActiveChips(); len(chips) > 0 {
		texts := make([]string, len(chips))
		for i, c := range chips {
			texts[i] = c.Text()
		}
		pterm.Info.Println("Active filters (" + strconv.Itoa(st.ActiveCount()) + "): " + strings.Join(texts, ", "))
	}

	_, scored := st.Quiz()
	if err := cardTable(view.Cards(st.Filtered()), scored); err != nil {
		return err
	}

	if recs := st.Recommendations(); len(recs) > 0 {
		pterm.DefaultSection.Println("Recommended for you")
		if err := cardTable(view.Cards(recs), true); err != nil {
			return err
		}
	}

	if items := st.CompareItems(); len(items) > 0 {
		pterm.DefaultSection.Println("Compare")
		for _, line := range view.CompareLines(items) {
			pterm.Println("  " + line)
		}
	}

	if query := st.Query().Encode(); query != "" {
		pterm.Println()
		pterm.Println("Share: ?" + query)
	}
	return nil
}

func cardTable(cards []view.Card, scored bool) error {
	if len(cards) == 0 {
		pterm.Warning.Println("No kits match the current filters.")
		return nil
	}

	header := []string{"Kit", "Chips", "Specs", "Price", "Buy"}
	if scored {
		header = append([]string{"Match"}, header...)
	}
	data := pterm.TableData{header}
	for _, c := range cards {
		row := []string{
			c.Title,
			strings.Join(c.Chips, ", "),
			strings.Join(c.Specs, " · "),
			priceColor(c.PriceLabel),
			c.BuyLabel,
		}
		if scored {
			row = append([]string{strconv.Itoa(c.Score) + "%"}, row...)
		}
		data = append(data, row)
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func priceColor(label string) string {
	switch {
	case label == "":
		return pterm.Gray("n/a")
	case strings.HasPrefix(label, "MSRP"):
		return pterm.Yellow(label)
	default:
		return pterm.Green(label)
	}
}

func printSummary(result *models.LoadResult, metrics map[string]interface{}, cfg *config.Config, exported bool) {
	totalItems := int64(0)
	if processed, ok := metrics["processed_kits"].(int64); ok {
		totalItems = processed
	}

	separator := "--------------------------------------------------"
	fmt.Println(separator)
	fmt.Println("Catalog loaded")
	fmt.Printf("  Source:        %s\n", result.Source)
	fmt.Printf("  Kits:          %d\n", totalItems)
	fmt.Printf("  Size:          %s\n", humanize.Bytes(uint64(result.Bytes)))
	if result.RequestCount > 0 {
		fmt.Printf("  Requests:      %d\n", result.RequestCount)
		fmt.Printf("  Retries:       %d\n", result.RetryCount)
	}
	if len(result.ErrorsByType) > 0 {
		fmt.Printf("  Error types:   %v\n", result.ErrorsByType)
	}
	if valErrors, ok := metrics["validation_errors"].(map[string]int); ok && len(valErrors) > 0 {
		fmt.Printf("  Validation:    %v\n", valErrors)
	}
	fmt.Printf("  Duration:      %v\n", result.Duration().Round(time.Millisecond))
	if exported {
		fmt.Printf("  Output file:   %s\n", cfg.OutputFile)
	}
	fmt.Println(separator)
}
