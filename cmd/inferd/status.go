package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"inferd/pkg/types"
)

func newStatusCmd(a *app) *cobra.Command {
	var base string
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "status",
		Short:   "Fetch the status document from a running daemon",
		Example: "  inferd status --daemon http://127.0.0.1:8090",
		RunE: func(cmd *cobra.Command, args []string) error {
			url := base
			if url == "" {
				url = statusBaseURL(a.cfg.Addr)
			}
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, url+"/status", nil)
			if err != nil {
				return err
			}
			client := &http.Client{Timeout: 10 * time.Second}
			resp, err := client.Do(req)
			if err != nil {
				return fmt.Errorf("daemon unreachable at %s: %w", url, err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("status endpoint returned %s", resp.Status)
			}
			var st types.ServiceStatus
			if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
				return fmt.Errorf("decode status: %w", err)
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			}
			printStatus(st)
			return nil
		},
	}
	cmd.Flags().StringVar(&base, "daemon", "", "Base URL of the daemon diagnostics endpoint")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the raw JSON document")
	return cmd
}

// statusBaseURL turns a listen address like ":8090" into a dialable URL.
func statusBaseURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://127.0.0.1" + addr
	}
	if !strings.Contains(addr, "://") {
		return "http://" + addr
	}
	return addr
}

func printStatus(st types.ServiceStatus) {
	up := time.Duration(st.UptimeSeconds) * time.Second
	fmt.Printf("state: %s  engine: %s  up: %s\n", st.State, st.EngineCapability, up)
	fmt.Printf("models: %d loaded / %d registered  sessions: %d\n",
		st.Pool.LoadedCount, st.RegisteredCount, st.Sessions)
	for _, m := range st.Pool.Models {
		marker := " "
		if m.Active {
			marker = "*"
		}
		fmt.Printf("%s %-28s %-8s queries=%d queue=%d/%d\n",
			marker, m.ID, m.State, m.Queries, m.QueueLen, m.MaxQueueDepth)
	}
	for _, r := range st.Resources {
		fmt.Printf("  %-6s %5.1f%% [%s]\n", r.Resource, r.UsagePercent, r.Tier)
	}
	for _, rec := range st.Recovery {
		if rec.Attempts == 0 && !rec.Escalated {
			continue
		}
		flag := ""
		if rec.Escalated {
			flag = "  ESCALATED"
		}
		fmt.Printf("  recovery %s: %d attempts%s\n", rec.Resource, rec.Attempts, flag)
	}
}
