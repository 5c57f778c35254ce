// Command seeder posts a sample odds slip to a running API so the history
// table and dashboards have something to show.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/oraculo/stats-api/internal/models"
)

const sampleSlip = `Team Spirit vs Gaimin Gladiators
Vencedor da partida
Team Spirit 1.85
Gaimin Gladiators 1.95
Mapa 1 - Vencedor
Team Spirit 1.80
Gaimin Gladiators 2.00
Mapa 1 - Total de abates
Mais de 45.5 1.87
Menos de 45.5 1.87
Handicap de mapas
Team Spirit -1.5 3.10
Gaimin Gladiators +1.5 1.35
`

func main() {
	apiURL := flag.String("url", "http://localhost:8080/api/v1/process/text", "process endpoint")
	file := flag.String("file", "", "odds text file (defaults to a built-in slip)")
	bookmaker := flag.String("bookmaker", "seed", "bookmaker label stored with the analysis")
	flag.Parse()

	text := sampleSlip
	if *file != "" {
		b, err := os.ReadFile(*file)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", *file, err)
		}
		text = string(b)
	}

	payload, err := json.Marshal(models.ProcessTextRequest{Text: text, Bookmaker: *bookmaker})
	if err != nil {
		log.Fatalf("Failed to marshal JSON: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, *apiURL, bytes.NewReader(payload))
	if err != nil {
		log.Fatalf("Failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("Failed to send request: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("Status: %s\n", resp.Status)

	var analysis models.Analysis
	if resp.StatusCode != http.StatusOK || json.Unmarshal(body, &analysis) != nil {
		fmt.Printf("Response: %s\n", body)
		os.Exit(1)
	}
	fmt.Printf("Analysis %s: %s vs %s, %d value bets\n",
		analysis.ID, analysis.RadiantTeam, analysis.DireTeam, len(analysis.ValueBets))
}
