// Command render renders or exports a résumé document from a JSON file
// without running the server.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"resume-builder/internal/export"
	"resume-builder/internal/logger"
	"resume-builder/internal/model"
	"resume-builder/internal/render"
	infra "resume-builder/pkg/infrastructure"

	"github.com/spf13/cobra"
)

func main() {
	logger.Setup(os.Getenv("LOG_LEVEL"), "console")
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "render",
		Short:         "Render résumé documents",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newValidateCmd(), newHTMLCmd(), newPDFCmd())
	return root
}

func readDocument(path string) (model.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.Document{}, err
	}
	doc, err := model.DecodeDocument(raw)
	if err != nil {
		return model.Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [document.json]",
		Short: "Check a document against the stored document schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := readDocument(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", args[0])
			return nil
		},
	}
}

func newHTMLCmd() *cobra.Command {
	var variant, out string
	cmd := &cobra.Command{
		Use:   "html [document.json]",
		Short: "Render a document to HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			r, err := render.NewRenderer()
			if err != nil {
				return err
			}
			s, err := r.Render(doc, model.Template(variant))
			if err != nil {
				return err
			}
			if out == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), s.HTML)
				return err
			}
			if err := os.WriteFile(out, []byte(s.HTML), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s)\n", out, s.Variant)
			return nil
		},
	}
	cmd.Flags().StringVarP(&variant, "template", "t", string(model.TemplateModern), "template variant")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newPDFCmd() *cobra.Command {
	var (
		variant, dir, chrome string
		scale                float64
	)
	cmd := &cobra.Command{
		Use:   "pdf [document.json]",
		Short: "Export a document to an A4 PDF with headless Chrome",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			r, err := render.NewRenderer()
			if err != nil {
				return err
			}
			s, err := r.Render(doc, model.Template(variant))
			if err != nil {
				return err
			}
			if chrome == "" {
				chrome = os.Getenv("CHROME_PATH")
			}
			p := export.NewPipeline(infra.NewChromedpRasterizer(chrome, scale))

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()
			res, err := p.Export(ctx, s, export.FileName(doc.PersonalInfo, time.Now()))
			if err != nil {
				return err
			}
			// the command writes the file itself so the name is not nested
			// under a surface key directory
			path, err := export.LocalSink{Dir: dir}.Store(ctx, res.FileName, res.PDF)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d pages)\n", filepath.Clean(path), res.Pages)
			return nil
		},
	}
	cmd.Flags().StringVarP(&variant, "template", "t", string(model.TemplateModern), "template variant")
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "output directory")
	cmd.Flags().StringVar(&chrome, "chrome", "", "Chrome executable (default $CHROME_PATH)")
	cmd.Flags().Float64Var(&scale, "scale", 2, "device scale factor")
	return cmd
}
