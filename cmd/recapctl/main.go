package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// Options holds the global flags shared by all subcommands.
type Options struct {
	Addr  string
	Key   string
	Token string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:   "recapctl",
		Short: "Operator CLI for the weekly recap engine",
		Long:  "recapctl talks to a running recapd admin API: force a recap for one group and week, or inspect the last sweep.",
	}

	cmd.PersistentFlags().StringVar(&opts.Addr, "addr", "http://localhost:8080", "recapd base URL")
	cmd.PersistentFlags().StringVar(&opts.Key, "key", os.Getenv("RECAP_OPERATOR_KEY"), "operator key (or RECAP_OPERATOR_KEY)")
	cmd.PersistentFlags().StringVar(&opts.Token, "token", "", "pre-issued admin token (skips the key exchange)")

	cmd.AddCommand(newForceCommand(opts))
	cmd.AddCommand(newStatusCommand(opts))

	return cmd
}

func newForceCommand(opts *Options) *cobra.Command {
	var groupID, weekEnd string

	cmd := &cobra.Command{
		Use:   "force",
		Short: "Force-process one group for one week (dedup still applies)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := time.Parse("2006-01-02", weekEnd); err != nil {
				return fmt.Errorf("invalid --week-end %q: expected YYYY-MM-DD", weekEnd)
			}

			body, err := opts.post("/api/v1/admin/recaps/force", map[string]string{
				"group_id": groupID,
				"week_end": weekEnd,
			})
			if err != nil {
				return err
			}
			fmt.Println(body)
			return nil
		},
	}

	cmd.Flags().StringVar(&groupID, "group", "", "group ID to process")
	cmd.Flags().StringVar(&weekEnd, "week-end", "", "week end date (a Sunday, YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("group")
	_ = cmd.MarkFlagRequired("week-end")

	return cmd
}

func newStatusCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the most recent sweep report",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := opts.get("/api/v1/admin/recaps/last-run")
			if err != nil {
				return err
			}
			fmt.Println(body)
			return nil
		},
	}
}

func (o *Options) authToken() (string, error) {
	if o.Token != "" {
		return o.Token, nil
	}
	if o.Key == "" {
		return "", fmt.Errorf("no --token and no operator key (--key or RECAP_OPERATOR_KEY)")
	}

	payload, _ := json.Marshal(map[string]string{"operator_key": o.Key})
	resp, err := http.Post(o.Addr+"/api/v1/auth/token", "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("token exchange failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token exchange rejected (%d)", resp.StatusCode)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("token exchange: bad response: %w", err)
	}

	o.Token = out.Token
	return o.Token, nil
}

func (o *Options) post(path string, payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequest(http.MethodPost, o.Addr+path, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	return o.do(req)
}

func (o *Options) get(path string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, o.Addr+path, nil)
	if err != nil {
		return "", err
	}
	return o.do(req)
}

func (o *Options) do(req *http.Request) (string, error) {
	token, err := o.authToken()
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("recapd returned %d: %s", resp.StatusCode, raw)
	}
	return string(raw), nil
}
