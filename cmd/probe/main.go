// Command probe submits a location to a running coordination service and
// polls until the final report arrives. Intended for smoke-testing a
// deployment from the shell.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:8080", "service base URL")
		lat      = flag.Float64("lat", 37.7749, "latitude")
		lon      = flag.Float64("lon", -122.4194, "longitude")
		priority = flag.String("priority", "comprehensive", "request priority (urgent or comprehensive)")
		timeout  = flag.Duration("timeout", 90*time.Second, "how long to poll before giving up")
		interval = flag.Duration("interval", 2*time.Second, "poll interval")
	)
	flag.Parse()

	client := &http.Client{Timeout: 15 * time.Second}

	id, err := submit(client, *baseURL, *lat, *lon, *priority)
	if err != nil {
		fmt.Fprintln(os.Stderr, "submit failed:", err)
		os.Exit(1)
	}
	fmt.Println("submitted:", id)

	deadline := time.Now().Add(*timeout)
	for time.Now().Before(deadline) {
		report, done, err := poll(client, *baseURL, id)
		if err != nil {
			fmt.Fprintln(os.Stderr, "poll failed:", err)
			os.Exit(1)
		}
		if done {
			out, _ := json.MarshalIndent(report, "", "  ")
			fmt.Println(string(out))
			return
		}
		time.Sleep(*interval)
	}
	fmt.Fprintln(os.Stderr, "timed out waiting for", id)
	os.Exit(1)
}

func submit(client *http.Client, baseURL string, lat, lon float64, priority string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"latitude":  lat,
		"longitude": lon,
		"priority":  priority,
	})
	if err != nil {
		return "", err
	}

	resp, err := client.Post(baseURL+"/analyze-location", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}
	var parsed struct {
		RequestID string `json:"request_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if parsed.RequestID == "" {
		return "", fmt.Errorf("response carried no request id")
	}
	return parsed.RequestID, nil
}

func poll(client *http.Client, baseURL, id string) (json.RawMessage, bool, error) {
	resp, err := client.Get(baseURL + "/results/" + id)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, false, fmt.Errorf("request id %s unknown to the service", id)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var parsed struct {
		Status string          `json:"status"`
		Report json.RawMessage `json:"report"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, false, err
	}
	if parsed.Status == "completed" {
		return parsed.Report, true, nil
	}
	return nil, false, nil
}
