// Command voicesheet edits spreadsheet sheets cell by cell, by voice through
// a browser bridge or by keyboard in the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"voice-sheet/internal/config"
	"voice-sheet/internal/gateway"
	"voice-sheet/internal/kvstore"
	"voice-sheet/internal/session"
	"voice-sheet/internal/voice"
)

type app struct {
	cfgPath string
	cfg     config.Config
	log     *logrus.Logger
}

func main() {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "voicesheet",
		Short: "Fill in spreadsheets cell by cell by voice or keyboard",
		Long: `voicesheet walks the editable cells of a sheet one at a time and records
every edit as an overlay on the original. Nothing is written back until the
sheet is saved as a new workbook.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	rootCmd.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", "", "Path to YAML config file")

	rootCmd.AddCommand(a.serveCmd(), a.editCmd(), a.inspectCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = config.NewLogger(cfg.Log)
	return nil
}

func (a *app) entry() *logrus.Entry {
	return logrus.NewEntry(a.log)
}

func (a *app) openStore() (kvstore.Store, error) {
	kv, err := kvstore.Open(a.cfg.Storage.Driver, a.cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", a.cfg.Storage.Driver, err)
	}
	return kv, nil
}

func (a *app) gateway() *gateway.XLSX {
	return gateway.NewXLSX(a.cfg.Sheets.Root, a.cfg.Sheets.OutputDir, a.entry().WithField("component", "gateway"))
}

func (a *app) newSession(kv kvstore.Store, gw gateway.Gateway, in session.SpeechInput, out session.SpeechOutput, n session.Notifier) *session.Session {
	return session.New(session.Options{
		Gateway:   gw,
		Store:     kv,
		Router:    voice.NewRouter(a.cfg.Voice.Keywords, a.cfg.Voice.Numerals),
		Filter:    a.cfg.Filter.Columns(),
		SpeechIn:  in,
		SpeechOut: out,
		Notifier:  n,
		Log:       a.entry(),
	})
}
