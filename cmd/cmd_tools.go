package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	app "returns-desk/internal/application"
	"returns-desk/internal/container"
	"returns-desk/internal/domain/entity"
	"returns-desk/internal/infrastructure/export"
	"returns-desk/internal/infrastructure/imaging"
)

var (
	normalizeOut string
	exportOut    string
)

// lookupCmd печатает карточку товара
var lookupCmd = &cobra.Command{
	Use:   "lookup [item-number]",
	Short: "Print item details as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runLookup,
}

// normalizeCmd конвертирует файлы в PNG
var normalizeCmd = &cobra.Command{
	Use:   "normalize [files...]",
	Short: "Convert images to PNG keeping their dimensions",
	Long: `Converts every file to PNG with the same dimensions.

The batch is all-or-nothing: if any file cannot be decoded, nothing is written.

Example:
  returns-desk normalize front.jpg back.webp -o ./out`,
	Args: cobra.MinimumNArgs(1),
	RunE: runNormalize,
}

// exportCmd выгружает результаты поиска из JSON-файла
var exportCmd = &cobra.Command{
	Use:   "export [results.json]",
	Short: "Export search results to a spreadsheet and image files",
	Long: `Reads search results ([{"id","image","result"}] or {"results": [...]})
and writes results.xlsx plus image_<id>.png files.

Without -o the configured export sink (EXPORT_SINK) is used.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	normalizeCmd.Flags().StringVarP(&normalizeOut, "out", "o", ".", "Output directory")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output directory (overrides EXPORT_SINK)")
}

func runLookup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	deps, err := container.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	item, err := deps.ItemService.Lookup(ctx, args[0])
	if err != nil {
		logger.Error("lookup failed", zap.String("item", args[0]), zap.Error(err))
		return errors.New(app.MsgFetchItemError)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(item)
}

func runNormalize(cmd *cobra.Command, args []string) error {
	files := make([]entity.AcquiredFile, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files = append(files, entity.AcquiredFile{
			Name:        filepath.Base(path),
			ContentType: mime.TypeByExtension(filepath.Ext(path)),
			Data:        data,
		})
	}

	normalizer := imaging.NewNormalizer(cfg.App.NormalizeConcurrency, logger)
	images, err := normalizer.NormalizeBatch(cmd.Context(), files)
	if err != nil {
		return err
	}

	out := make([]entity.ExportFile, len(images))
	for i, img := range images {
		out[i] = entity.ExportFile{Name: img.Name, ContentType: img.ContentType(), Data: img.Data}
	}

	paths, err := export.NewDirSink(normalizeOut, logger).Write(cmd.Context(), out)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	results, err := readResults(args[0])
	if err != nil {
		return err
	}

	svc, closeFn, err := exportService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := svc.Export(ctx, results)
	if err != nil {
		return err
	}
	if res == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "no results, nothing exported")
		return nil
	}
	for _, loc := range res.Locations {
		fmt.Fprintln(cmd.OutOrStdout(), loc)
	}
	return nil
}

func exportService(ctx context.Context) (*app.ExportService, func() error, error) {
	if exportOut != "" {
		svc := app.NewExportService(export.NewExporter(logger), export.NewDirSink(exportOut, logger), logger)
		return svc, func() error { return nil }, nil
	}

	deps, err := container.New(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return deps.ExportService, deps.Close, nil
}

// readResults принимает и голый массив, и объект с полем results.
func readResults(path string) ([]entity.QueryResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var results []entity.QueryResult
	if err := json.Unmarshal(data, &results); err == nil {
		return results, nil
	}

	var wrapped struct {
		Results []entity.QueryResult `json:"results"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return wrapped.Results, nil
}
