// Package main is the entry point for wiredump, a small inspector for
// LSP-style Content-Length framed JSON-RPC streams. It decodes a
// captured stream (or stdin) frame by frame and prints one line per
// message.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/yukin371/lspwire/internal/config"
	"github.com/yukin371/lspwire/internal/protocol"
	"github.com/yukin371/lspwire/internal/wire"
	"github.com/yukin371/lspwire/pkg/logger"
	"github.com/yukin371/lspwire/pkg/utils"
)

// version is set by build flags during release
var version = "dev"

var (
	cfgFile string
	verbose bool
	format  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wiredump [file ...]",
	Short: "Inspect Content-Length framed JSON-RPC streams",
	Long: `wiredump decodes LSP-style wire captures: Content-Length framed
JSON-RPC 2.0 messages as exchanged over a language server's stdio.

It reads each named capture file, or stdin when no file is given, and
prints one line per message: the message kind, id, method and a payload
preview, or the canonical JSON envelope in json format.`,
	Args:    cobra.ArbitraryArgs,
	RunE:    runDump,
	Version: version,
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wiredump version %s\n", version)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/lspwire/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.Flags().StringVarP(&format, "format", "f", "", "output format: text or json (overrides config)")

	rootCmd.AddCommand(versionCmd)
}

func runDump(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	if verbose {
		level = logger.DEBUG
	}
	log := logger.New(os.Stderr, os.Stderr, level, "wiredump")

	if format == "" {
		format = cfg.Dump.Format
	}
	switch format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid format %q: want \"text\" or \"json\"", format)
	}

	if len(args) == 0 {
		return dumpStream(os.Stdin, os.Stdout, cfg, log)
	}
	for _, path := range args {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		err = dumpStream(f, os.Stdout, cfg, log)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

// dumpStream decodes frames from r until a clean end of stream and
// prints one line per message to w.
func dumpStream(r io.Reader, w io.Writer, cfg *config.Config, log *logger.Logger) error {
	codec := wire.NewCodec(r, io.Discard, wire.WithLogger(log))
	for n := 1; ; n++ {
		msg, err := codec.ReadMessage()
		if err == io.EOF {
			log.Debug("end of stream after %d message(s)", n-1)
			return nil
		}
		if err != nil {
			return fmt.Errorf("frame %d: %w", n, err)
		}

		if format == "json" {
			line, err := json.Marshal(msg)
			if err != nil {
				return fmt.Errorf("frame %d: %w", n, err)
			}
			fmt.Fprintln(w, string(line))
			continue
		}
		fmt.Fprintln(w, summarize(msg, cfg.Dump.PreviewBytes))
	}
}

// summarize renders one text line for a decoded message.
func summarize(msg *protocol.Message, previewBytes int) string {
	switch {
	case msg.Request != nil:
		req := msg.Request
		return fmt.Sprintf("request      id=%-6s method=%-30s %s",
			req.ID, req.Method, preview(req.Params.Params, previewBytes))
	case msg.Response != nil:
		resp := msg.Response
		if resp.Error != nil {
			return fmt.Sprintf("response     id=%-6s error=%d %s",
				resp.ID, resp.Error.Code, resp.Error.Message)
		}
		return fmt.Sprintf("response     id=%-6s %s",
			resp.ID, preview(resp.Result, previewBytes))
	case msg.Notification != nil:
		note := msg.Notification
		return fmt.Sprintf("notification           method=%-30s %s",
			note.Method, preview(note.Params.Params, previewBytes))
	}
	return "empty message"
}

func preview(raw json.RawMessage, maxLen int) string {
	if len(raw) == 0 {
		return ""
	}
	return utils.TruncateString(string(raw), maxLen)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
