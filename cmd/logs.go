package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/mviewer/cli"
	"github.com/grovetools/mviewer/logging"
	"github.com/grovetools/mviewer/tui/theme"
	"github.com/hpcloud/tail"
	"github.com/spf13/cobra"
)

// NewLogsCmd creates the `logs` command.
func NewLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the mviewer log",
		Long: `Prints today's mviewer log file (or logging.file.path when configured).

Examples:
  # Follow the log while a session runs in another terminal
  mviewer logs -f

  # The last 50 entries from the transport and viewer only
  mviewer logs --tail 50 --component transport,viewer`,
		Args: cobra.NoArgs,
		RunE: runLogsE,
	}

	cmd.Flags().BoolP("follow", "f", false, "Follow log output")
	cmd.Flags().Int("tail", -1, "Number of lines to show from the end of the log (default: all)")
	cmd.Flags().StringSlice("component", nil, "Only show entries from these components")
	return cmd
}

func runLogsE(cmd *cobra.Command, args []string) error {
	var logCfg logging.Config
	if cfg, err := loadConfig(cmd); err == nil {
		_ = cfg.UnmarshalExtension("logging", &logCfg)
	}
	path := logging.FilePath(logCfg, time.Now())

	follow, _ := cmd.Flags().GetBool("follow")
	tailLines, _ := cmd.Flags().GetInt("tail")
	components, _ := cmd.Flags().GetStringSlice("component")
	jsonOutput := cli.GetOptions(cmd).JSONOutput

	location := &tail.SeekInfo{Offset: 0, Whence: io.SeekStart}
	if tailLines >= 0 {
		offset, err := tailOffset(path, tailLines)
		if err != nil && !follow {
			return fmt.Errorf("failed to read log file %s: %w", path, err)
		}
		location.Offset = offset
	}

	t, err := tail.TailFile(path, tail.Config{
		Follow:    follow,
		ReOpen:    follow,
		MustExist: !follow,
		Location:  location,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	defer t.Cleanup()

	out := cmd.OutOrStdout()
	for {
		select {
		case <-cmd.Context().Done():
			return t.Stop()
		case line, ok := <-t.Lines:
			if !ok {
				return t.Err()
			}
			if line.Err != nil {
				return line.Err
			}
			if !componentVisible(line.Text, components) {
				continue
			}
			if jsonOutput {
				fmt.Fprintln(out, line.Text)
			} else {
				printLogText(out, line.Text)
			}
		}
	}
}

// tailOffset returns the byte offset at which the last n lines of path
// start. n == 0 means the whole file.
func tailOffset(path string, n int) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var starts []int64
	var offset int64
	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			starts = append(starts, offset)
			offset += int64(len(line))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}

	if n == 0 || n >= len(starts) {
		return 0, nil
	}
	return starts[len(starts)-n], nil
}

func componentVisible(line string, components []string) bool {
	if len(components) == 0 {
		return true
	}
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		// text formatter lines carry the component in brackets
		for _, c := range components {
			if strings.Contains(line, "["+c+"]") {
				return true
			}
		}
		return false
	}
	component, _ := entry["component"].(string)
	for _, c := range components {
		if c == component {
			return true
		}
	}
	return false
}

// printLogText pretty-prints a JSON log line; other lines pass through.
func printLogText(out io.Writer, line string) {
	var logMap map[string]interface{}
	if err := json.Unmarshal([]byte(line), &logMap); err != nil {
		fmt.Fprintln(out, line)
		return
	}

	ts, _ := logMap["time"].(string)
	level, _ := logMap["level"].(string)
	msg, _ := logMap["msg"].(string)
	component, _ := logMap["component"].(string)

	parsedTime, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		parsedTime, _ = time.Parse(time.RFC3339, ts)
	}

	var levelStyle lipgloss.Style
	switch strings.ToLower(level) {
	case "error", "fatal", "panic":
		levelStyle = theme.DefaultTheme.Error
	case "warning":
		levelStyle = theme.DefaultTheme.Warning
	case "info":
		levelStyle = theme.DefaultTheme.Info
	default:
		levelStyle = theme.DefaultTheme.Muted
	}

	var keys []string
	for k := range logMap {
		if k != "time" && k != "level" && k != "msg" && k != "component" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	fields := make([]string, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, fmt.Sprintf("%s=%v", theme.DefaultTheme.Muted.Render(k), logMap[k]))
	}

	fmt.Fprintf(out, "%s %s [%s] %s %s\n",
		parsedTime.Format("15:04:05"),
		levelStyle.Render(strings.ToUpper(level)),
		theme.DefaultTheme.Accent.Render(component),
		msg,
		strings.Join(fields, " "),
	)
}
