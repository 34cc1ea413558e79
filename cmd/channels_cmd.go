package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/autoreply/internal/channels"
	"github.com/nextlevelbuilder/autoreply/internal/config"
)

func channelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "channels",
		Short: "List messaging channels",
	}
	cmd.AddCommand(channelsListCmd())
	return cmd
}

type channelEntry struct {
	Name           string `json:"name"`
	Enabled        bool   `json:"enabled"`
	HasCredentials bool   `json:"has_credentials"`
}

func channelEntries(cfg *config.Config) []channelEntry {
	ch := cfg.Channels
	return []channelEntry{
		{channels.NameTelegram, ch.Telegram.Enabled, ch.Telegram.Token != ""},
		{channels.NameDiscord, ch.Discord.Enabled, ch.Discord.Token != ""},
		{channels.NameSlack, ch.Slack.Enabled, ch.Slack.BotToken != "" && ch.Slack.AppToken != ""},
	}
}

func channelsListCmd() *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured channels and their status",
		Run: func(cmd *cobra.Command, args []string) {
			entries := channelEntries(mustLoadConfig())

			if jsonOutput {
				data, _ := json.MarshalIndent(entries, "", "  ")
				fmt.Println(string(data))
				return
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "CHANNEL\tENABLED\tCREDENTIALS\n")
			for _, e := range entries {
				creds := "missing"
				if e.HasCredentials {
					creds = "ok"
				}
				fmt.Fprintf(tw, "%s\t%v\t%s\n", e.Name, e.Enabled, creds)
			}
			tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}
