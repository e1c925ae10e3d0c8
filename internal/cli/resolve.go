package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	progressbar "github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"purl2src/internal/adapters"
	"purl2src/internal/app"
	"purl2src/internal/types"
)

type resolveOptions struct {
	File            string
	Format          string
	Output          string
	NoValidate      bool
	ExecuteFallback bool
	Concurrency     int
	Timeout         int
	Mirrors         string
	CacheDir        string
	NoCache         bool
	Progress        bool
}

func newResolveCommand() *cobra.Command {
	opts := resolveOptions{}
	cmd := &cobra.Command{
		Use:   "resolve [purl...]",
		Short: "Resolve PURLs to download URLs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd.Context(), cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.File, "file", "", "File with one PURL per line")
	cmd.Flags().StringVar(&opts.Format, "format", adapters.FormatPlain, "Output format (plain, json, csv)")
	cmd.Flags().StringVar(&opts.Output, "output", "", "Write output to a file instead of stdout")
	cmd.Flags().BoolVar(&opts.NoValidate, "no-validate", false, "Skip URL reachability validation")
	cmd.Flags().BoolVar(&opts.ExecuteFallback, "execute-fallback", false, "Run package-manager fallback commands on miss")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 0, "Parallel workers for batch resolution")
	cmd.Flags().IntVar(&opts.Timeout, "timeout", 30, "Per-PURL timeout in seconds")
	cmd.Flags().StringVar(&opts.Mirrors, "mirrors", "", "Mirrors file with per-ecosystem base URLs")
	cmd.Flags().StringVar(&opts.CacheDir, "cache-dir", adapters.DefaultCacheDir(), "Result cache directory")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "Disable the result cache")
	cmd.Flags().BoolVar(&opts.Progress, "progress", false, "Show a progress bar on stderr")

	_ = viper.BindPFlag("file", cmd.Flags().Lookup("file"))
	_ = viper.BindPFlag("format", cmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("no_validate", cmd.Flags().Lookup("no-validate"))
	_ = viper.BindPFlag("execute_fallback", cmd.Flags().Lookup("execute-fallback"))
	_ = viper.BindPFlag("concurrency", cmd.Flags().Lookup("concurrency"))
	_ = viper.BindPFlag("timeout", cmd.Flags().Lookup("timeout"))
	_ = viper.BindPFlag("mirrors", cmd.Flags().Lookup("mirrors"))
	_ = viper.BindPFlag("cache_dir", cmd.Flags().Lookup("cache-dir"))
	_ = viper.BindPFlag("no_cache", cmd.Flags().Lookup("no-cache"))

	return cmd
}

func runResolve(ctx context.Context, cmd *cobra.Command, opts resolveOptions, args []string) error {
	purls := append([]string(nil), args...)
	if file := resolveString(cmd, opts.File, "file", "file"); file != "" {
		fromFile, err := readPurlFile(file)
		if err != nil {
			return err
		}
		purls = append(purls, fromFile...)
	}
	if len(purls) == 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("no purls given: pass them as arguments or via --file")
	}

	cfg := app.Config{
		Validate:        !resolveBool(cmd, opts.NoValidate, "no_validate", "no-validate"),
		ExecuteFallback: resolveBool(cmd, opts.ExecuteFallback, "execute_fallback", "execute-fallback"),
		Concurrency:     resolveInt(cmd, opts.Concurrency, "concurrency", "concurrency"),
		TimeoutSec:      resolveInt(cmd, opts.Timeout, "timeout", "timeout"),
		CacheTTL:        time.Hour,
	}
	if !resolveBool(cmd, opts.NoCache, "no_cache", "no-cache") {
		cfg.CacheDir = resolveString(cmd, opts.CacheDir, "cache_dir", "cache-dir")
	}
	if mirrorsPath := resolveString(cmd, opts.Mirrors, "mirrors", "mirrors"); mirrorsPath != "" {
		mirrors, err := adapters.LoadMirrors(mirrorsPath)
		if err != nil {
			return err
		}
		cfg.Mirrors = mirrors
	}

	var bar *progressbar.ProgressBar
	if opts.Progress {
		bar = progressbar.NewOptions(len(purls),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("resolving"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		cfg.OnResult = func(types.ResolutionResult) { _ = bar.Add(1) }
	}

	service := app.NewService(cfg)
	if cfg.CacheDir == "" {
		service.Cache = nil
	}
	result, err := service.Resolve(ctx, app.ResolveRequest{Purls: purls, Config: cfg})
	if err != nil {
		return err
	}
	if bar != nil {
		_ = bar.Finish()
	}

	if err := writeResults(cmd, opts, result.Results); err != nil {
		return err
	}
	if result.Failures > 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("completed with %d error(s)", result.Failures))
	}
	return nil
}

func writeResults(cmd *cobra.Command, opts resolveOptions, results []types.ResolutionResult) error {
	out := os.Stdout
	if path := resolveString(cmd, opts.Output, "output", "output"); path != "" {
		file, err := os.Create(path)
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to create output file").
				WithCause(err)
		}
		defer file.Close()
		out = file
	}
	writer, err := adapters.NewWriterOutputAdapter(resolveString(cmd, opts.Format, "format", "format"), out)
	if err != nil {
		return err
	}
	return writer.Write(results)
}

// readPurlFile loads one PURL per line, skipping blanks and comments.
func readPurlFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read purl file").
			WithCause(err)
	}
	defer file.Close()

	var purls []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		purls = append(purls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to scan purl file").
			WithCause(err)
	}
	return purls, nil
}
