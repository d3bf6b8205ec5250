package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// timerInfo mirrors the API timer representation
type timerInfo struct {
	ID      string  `json:"id"`
	Running bool    `json:"running"`
	Laps    []int64 `json:"laps_ns"`
}

// timersCmd represents the timers command
var timersCmd = &cobra.Command{
	Use:   "timers",
	Short: "Manage timers",
	Long:  `Commands for creating and driving named timers on a running lapwatch server.`,
}

var timersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all timers",
	RunE:  runTimersList,
}

var timersCreateCmd = &cobra.Command{
	Use:   "create <id>",
	Short: "Create a new timer",
	Args:  cobra.ExactArgs(1),
	RunE:  runTimersCreate,
}

var timersShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one timer and its laps",
	Args:  cobra.ExactArgs(1),
	RunE:  runTimersShow,
}

var timersStartCmd = &cobra.Command{
	Use:   "start <id>",
	Short: "Start a timer",
	Args:  cobra.ExactArgs(1),
	RunE:  makeTimerOp("start"),
}

var timersLapCmd = &cobra.Command{
	Use:   "lap <id>",
	Short: "Record a lap on a running timer",
	Args:  cobra.ExactArgs(1),
	RunE:  makeTimerOp("lap"),
}

var timersStopCmd = &cobra.Command{
	Use:   "stop <id>",
	Short: "Stop a running timer, recording the final lap",
	Args:  cobra.ExactArgs(1),
	RunE:  makeTimerOp("stop"),
}

var timersResetCmd = &cobra.Command{
	Use:   "reset <id>",
	Short: "Reset a timer, clearing its laps",
	Args:  cobra.ExactArgs(1),
	RunE:  makeTimerOp("reset"),
}

func init() {
	rootCmd.AddCommand(timersCmd)
	timersCmd.AddCommand(timersListCmd)
	timersCmd.AddCommand(timersCreateCmd)
	timersCmd.AddCommand(timersShowCmd)
	timersCmd.AddCommand(timersStartCmd)
	timersCmd.AddCommand(timersLapCmd)
	timersCmd.AddCommand(timersStopCmd)
	timersCmd.AddCommand(timersResetCmd)
}

// apiRequest performs a request against the timer API and decodes the
// response into out when the status matches.
func apiRequest(method, path string, body io.Reader, wantStatus int, out interface{}) error {
	req, err := http.NewRequest(method, GetServerURL()+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to lapwatch server: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != wantStatus {
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(data))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

func runTimersList(cmd *cobra.Command, args []string) error {
	var result struct {
		Timers []timerInfo `json:"timers"`
		Count  int         `json:"count"`
	}
	if err := apiRequest("GET", "/timers", nil, http.StatusOK, &result); err != nil {
		return err
	}

	if IsJSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(result)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "State", "Laps", "Total")
	for _, timer := range result.Timers {
		state := "idle"
		if timer.Running {
			state = "running"
		}
		var total time.Duration
		for _, lap := range timer.Laps {
			total += time.Duration(lap)
		}
		table.Append(timer.ID, state, fmt.Sprintf("%d", len(timer.Laps)), total.String())
	}
	table.Render()
	fmt.Printf("\nTotal timers: %d\n", result.Count)
	return nil
}

func runTimersCreate(cmd *cobra.Command, args []string) error {
	payload, _ := json.Marshal(map[string]string{"id": args[0]})

	var timer timerInfo
	if err := apiRequest("POST", "/timers", bytes.NewReader(payload), http.StatusCreated, &timer); err != nil {
		return err
	}

	if IsJSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(timer)
	}
	fmt.Printf("Timer %s created\n", timer.ID)
	return nil
}

func runTimersShow(cmd *cobra.Command, args []string) error {
	var timer timerInfo
	if err := apiRequest("GET", "/timers/"+args[0], nil, http.StatusOK, &timer); err != nil {
		return err
	}

	if IsJSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(timer)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Lap", "Duration")
	for i, lap := range timer.Laps {
		table.Append(fmt.Sprintf("%d", i+1), time.Duration(lap).String())
	}
	table.Render()

	state := "idle"
	if timer.Running {
		state = "running"
	}
	fmt.Printf("\nTimer %s (%s), %d laps\n", timer.ID, state, len(timer.Laps))
	return nil
}

// makeTimerOp builds a RunE for the start/lap/stop/reset operations, which
// share the same request/response shape.
func makeTimerOp(op string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		var timer timerInfo
		if err := apiRequest("POST", "/timers/"+args[0]+"/"+op, nil, http.StatusOK, &timer); err != nil {
			return err
		}

		if IsJSONOutput() {
			return json.NewEncoder(os.Stdout).Encode(timer)
		}
		switch op {
		case "lap", "stop":
			if n := len(timer.Laps); n > 0 {
				fmt.Printf("Timer %s: lap %d recorded (%s)\n", timer.ID, n, time.Duration(timer.Laps[n-1]))
				return nil
			}
		}
		fmt.Printf("Timer %s: %s ok\n", timer.ID, op)
		return nil
	}
}
