package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/finch-bank/finch/internal/app/chat"
	"github.com/finch-bank/finch/internal/infra/remote"
	"github.com/finch-bank/finch/internal/infra/sqlite"
)

func init() {
	rootCmd.AddCommand(chatCmd)
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant from the terminal",
	Long: `Open an interactive chat with the assistant server. The transcript is
stored locally alongside the ledger, so the dashboard shows the same
conversation. Exit with Ctrl+D or /quit.`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := sqlite.Open(cfg.Client.DataDir)
	if err != nil {
		return err
	}
	defer db.Close()

	session := chat.NewSession(remote.NewClient(cfg.Client.ServerURL), db)

	// Replay the stored transcript so the terminal picks up where the
	// dashboard left off.
	history, err := session.History()
	if err != nil {
		return err
	}
	for _, e := range history {
		fmt.Fprintf(os.Stdout, "вы:  %s\n", e.User)
		if e.Bot != "" {
			fmt.Fprintf(os.Stdout, "бот: %s\n", e.Bot)
		}
	}

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Fprint(os.Stdout, "вы:  ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "/quit" {
			break
		}
		if line != "" {
			reply := session.Send(cmd.Context(), line)
			fmt.Fprintf(os.Stdout, "бот: %s\n", reply)
		}
		fmt.Fprint(os.Stdout, "вы:  ")
	}
	fmt.Fprintln(os.Stdout)
	return scanner.Err()
}
