package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prasetyowira/qrlabel/bootstrap"
	"github.com/prasetyowira/qrlabel/config"
	"github.com/prasetyowira/qrlabel/constant"
	"github.com/prasetyowira/qrlabel/domain/label"
	appLogger "github.com/prasetyowira/qrlabel/infrastructure/logger"
	"github.com/prasetyowira/qrlabel/infrastructure/preview"
	"github.com/prasetyowira/qrlabel/infrastructure/qrcode"
)

var version = "v0.1.0"

const (
	flagQRWidthRatio    = "qr-width-ratio"
	flagFontWidthRatio  = "font-width-ratio"
	flagBorderThickness = "border-thickness"
	flagVerticalSpacing = "vertical-spacing"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

type generateFlags struct {
	text            string
	image           string
	count           int
	layout          string
	out             string
	preview         string
	qrWidthRatio    float64
	fontWidthRatio  float64
	borderThickness int
	verticalSpacing int
}

func newRootCmd(out io.Writer) *cobra.Command {
	var verbose bool
	var noHistory bool

	root := &cobra.Command{
		Use:          "qrlabel",
		Short:        "Generate printable QR code labels",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				appLogger.Initialize(false)
				return
			}
			appLogger.SetLogger(zap.NewNop())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			appLogger.Close()
		},
	}
	root.SetOut(out)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log pipeline steps to stderr")
	root.PersistentFlags().BoolVar(&noHistory, "no-history", false, "Do not record or read run history")

	// --- generate command ----------------------------------------------------
	var gf generateFlags
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Render labels for --text or the QR code in --image into a PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, gf, !noHistory)
		},
	}
	flags := generateCmd.Flags()
	flags.StringVarP(&gf.text, "text", "t", "", "Base text for the labels")
	flags.StringVarP(&gf.image, "image", "i", "", "PNG or JPEG containing a QR code to relabel")
	flags.IntVarP(&gf.count, "count", "n", 1, "Number of labels; above 1 each payload gets a -N suffix")
	flags.StringVarP(&gf.layout, "layout", "l", "", "Page layout: page, grid or stack (default from config)")
	flags.StringVarP(&gf.out, "out", "o", constant.FileNameLabelsPDF, "Output PDF path")
	flags.StringVar(&gf.preview, "preview", "", "Write a PNG preview of the first label here instead of a PDF")
	flags.Float64Var(&gf.qrWidthRatio, flagQRWidthRatio, 0, "QR width as a fraction of label width")
	flags.Float64Var(&gf.fontWidthRatio, flagFontWidthRatio, 0, "Starting caption size as a fraction of QR width")
	flags.IntVar(&gf.borderThickness, flagBorderThickness, 0, "Border thickness in pixels")
	flags.IntVar(&gf.verticalSpacing, flagVerticalSpacing, 0, "Gap between QR and caption in pixels")
	generateCmd.MarkFlagsMutuallyExclusive("text", "image")
	generateCmd.MarkFlagsOneRequired("text", "image")
	root.AddCommand(generateCmd)

	// --- decode command ------------------------------------------------------
	root.AddCommand(&cobra.Command{
		Use:   "decode [image]",
		Short: "Print the payload of the QR code in an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd, args[0])
		},
	})

	// --- runs command --------------------------------------------------------
	var limit int
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent runs from the history database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(cmd, limit, !noHistory)
		},
	}
	runsCmd.Flags().IntVar(&limit, constant.QueryLimit, constant.DefaultRunsListLimit, "Maximum number of runs to list")
	root.AddCommand(runsCmd)

	// --- version command -----------------------------------------------------
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "qrlabel %s\n", version)
		},
	})

	return root
}

// openApp loads configuration and wires the service
func openApp(history bool) (*bootstrap.App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if !history {
		cfg.DatabaseURL = ""
	}
	return bootstrap.New(cfg)
}

func newContext() context.Context {
	return appLogger.WithRequestID(context.Background(), uuid.New().String())
}

func runGenerate(cmd *cobra.Command, gf generateFlags, history bool) error {
	layout, err := label.ParseLayout(gf.layout)
	if err != nil {
		return err
	}

	app, err := openApp(history && gf.preview == "")
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := newContext()
	req := label.GenerateRequest{
		Text:    gf.text,
		Count:   gf.count,
		Layout:  layout,
		Options: optionsFromFlags(cmd, gf),
	}

	var img image.Image
	if gf.image != "" {
		if img, err = loadImage(gf.image); err != nil {
			return err
		}
	}

	if gf.preview != "" {
		var lbl *label.Label
		if img != nil {
			lbl, err = app.Service.PreviewFromImage(ctx, img, req)
		} else {
			lbl, err = app.Service.Preview(ctx, req)
		}
		if err != nil {
			return err
		}
		if err := writePreview(gf.preview, lbl); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), appLogger.FormatMetadata(map[string]interface{}{
			constant.DataPayload:  lbl.Payload,
			constant.DataFontSize: lbl.FontSize,
			constant.DataOverflow: lbl.Overflow,
			constant.DataPath:     gf.preview,
		}))
		return nil
	}

	var result *label.Result
	if img != nil {
		result, err = app.Service.GenerateFromImage(ctx, img, req)
	} else {
		result, err = app.Service.Generate(ctx, req)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(gf.out, result.Bytes, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", gf.out, err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), appLogger.FormatMetadata(map[string]interface{}{
		constant.DataRunID: result.RunID,
		constant.DataCount: len(result.Payloads),
		constant.DataPages: len(result.Document.Pages),
		constant.DataBytes: len(result.Bytes),
		constant.DataPath:  gf.out,
	}))
	return nil
}

func runDecode(cmd *cobra.Command, path string) error {
	img, err := loadImage(path)
	if err != nil {
		return err
	}

	app, err := openApp(false)
	if err != nil {
		return err
	}
	defer app.Close()

	text, err := app.Service.Decode(newContext(), img)
	if err != nil {
		if errors.Is(err, label.ErrNotFound) {
			return errors.New(constant.ErrQRNotFound)
		}
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

func runRuns(cmd *cobra.Command, limit int, history bool) error {
	app, err := openApp(history)
	if err != nil {
		return err
	}
	defer app.Close()

	runs, err := app.Service.ListRuns(newContext(), limit)
	if err != nil {
		return err
	}

	for _, run := range runs {
		fmt.Fprintln(cmd.OutOrStdout(), appLogger.FormatMetadata(map[string]interface{}{
			constant.DataRunID:     run.ID,
			constant.DataSource:    run.Source,
			constant.DataBase:      run.Base,
			constant.DataCount:     run.Count,
			constant.DataLayout:    run.Layout,
			constant.DataPages:     run.Pages,
			constant.DataCreatedAt: run.CreatedAt.Format(time.DateTime),
		}))
	}
	return nil
}

// optionsFromFlags only overrides the values the user actually passed
func optionsFromFlags(cmd *cobra.Command, gf generateFlags) label.Options {
	var opts label.Options
	flags := cmd.Flags()
	if flags.Changed(flagQRWidthRatio) {
		opts.QRWidthRatio = &gf.qrWidthRatio
	}
	if flags.Changed(flagFontWidthRatio) {
		opts.FontWidthRatio = &gf.fontWidthRatio
	}
	if flags.Changed(flagBorderThickness) {
		opts.BorderThickness = &gf.borderThickness
	}
	if flags.Changed(flagVerticalSpacing) {
		opts.VerticalSpacing = &gf.verticalSpacing
	}
	return opts
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return qrcode.DecodeImage(f)
}

func writePreview(path string, lbl *label.Label) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := preview.EncodePNG(f, lbl.Canvas, 0); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
