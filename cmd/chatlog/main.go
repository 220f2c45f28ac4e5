package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	cfgpkg "github.com/JetOU777/Pokemon-Showdown/internal/config"
	"github.com/JetOU777/Pokemon-Showdown/internal/converter"
	"github.com/JetOU777/Pokemon-Showdown/internal/modlog"
	"github.com/JetOU777/Pokemon-Showdown/internal/storage/sqlitestore"
	"github.com/JetOU777/Pokemon-Showdown/pkg/id"
	logpkg "github.com/JetOU777/Pokemon-Showdown/pkg/log"
)

func main() {
	// Respect CHATLOG_LOG_LEVEL for CLI output.
	level := os.Getenv("CHATLOG_LOG_LEVEL")
	parsed, err := logpkg.ParseLevel(level)
	if err != nil || level == "" {
		parsed = logpkg.InfoLevel
	}
	logger := logpkg.NewLogger(
		logpkg.WithLevel(parsed),
		logpkg.WithFormatter(&logpkg.TextFormatter{}),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)

	// Redirect standard library logs (used by Pebble) to our logger
	logpkg.RedirectStdLog(logger)

	rootCmd := &cobra.Command{
		Use:   "chatlog",
		Short: "Room log storage CLI",
		Long:  "chatlog manages per-room moderation logs and chat history: format conversion, integrity checks and quick inspection.",
	}
	rootCmd.PersistentFlags().String("config", "", "path to JSON config file")

	loadConfig := func(cmd *cobra.Command) (cfgpkg.Config, error) {
		path, _ := cmd.Flags().GetString("config")
		cfg, err := cfgpkg.Load(path)
		if err != nil {
			return cfgpkg.Config{}, err
		}
		cfgpkg.FromEnv(&cfg)
		return cfg, nil
	}

	// convert: migrate the modlog between storage formats
	convertCmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert the moderation log between txt and sqlite",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			db, err := sqlitestore.Open(sqlitestore.Options{
				Path: cfg.DatabasePath,
				// Exporting requires an existing database; importing creates one.
				FileMustExist: converter.Format(from) == converter.FormatSQLite,
			})
			if err != nil {
				return err
			}
			defer db.Close()
			c := converter.New(cfg.LogsDir, db, logger)
			return c.Convert(converter.Format(from), converter.Format(to))
		},
	}
	convertCmd.Flags().String("from", "txt", "source format (txt|sqlite)")
	convertCmd.Flags().String("to", "sqlite", "destination format (txt|sqlite)")
	rootCmd.AddCommand(convertCmd)

	// check: validate a text modlog file line by line
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Validate every line of a text modlog file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			if path == "" {
				return fmt.Errorf("--file is required")
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			sc := bufio.NewScanner(f)
			sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
			total, bad, modernized := 0, 0, 0
			lineNo := 0
			for sc.Scan() {
				lineNo++
				line := sc.Text()
				upgraded := modlog.Modernize(line)
				if upgraded != line {
					modernized++
				}
				rec, err := modlog.ParseLine(upgraded, false)
				if err != nil {
					bad++
					fmt.Fprintf(cmd.OutOrStdout(), "line %d: %v\n", lineNo, err)
					continue
				}
				if rec != nil {
					total++
				}
			}
			if err := sc.Err(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d valid records, %d legacy lines upgraded, %d malformed\n",
				total, modernized, bad)
			if bad > 0 {
				return fmt.Errorf("%d malformed lines", bad)
			}
			return nil
		},
	}
	checkCmd.Flags().String("file", "", "text modlog file to check")
	rootCmd.AddCommand(checkCmd)

	// tail: print the last records of a room's text modlog
	tailCmd := &cobra.Command{
		Use:   "tail",
		Short: "Print the last moderation records of a room",
		RunE: func(cmd *cobra.Command, args []string) error {
			room, _ := cmd.Flags().GetString("room")
			n, _ := cmd.Flags().GetInt("lines")
			if room == "" {
				return fmt.Errorf("--room is required")
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			// Sub-rooms log into their root room's file.
			path := filepath.Join(cfg.LogsDir, "modlog", "modlog_"+id.Root(room)+".txt")
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			var lines []string
			sc := bufio.NewScanner(f)
			sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
			for sc.Scan() {
				if sc.Text() == "" {
					continue
				}
				lines = append(lines, sc.Text())
				if len(lines) > n {
					lines = lines[1:]
				}
			}
			if err := sc.Err(); err != nil {
				return err
			}
			for _, line := range lines {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	tailCmd.Flags().String("room", "", "room id")
	tailCmd.Flags().Int("lines", 20, "number of records to print")
	rootCmd.AddCommand(tailCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
