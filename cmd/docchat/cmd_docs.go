package main

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/neurobridge-docchat/internal/domain"
	"github.com/yungbote/neurobridge-docchat/internal/view"
)

var (
	docsWait  bool
	docsWatch bool
)

var docsCmd = &cobra.Command{
	Use:     "docs",
	Aliases: []string{"documents"},
	Short:   "Upload and manage documents",
	RunE:    runDocsList,
}

var docsUploadCmd = &cobra.Command{
	Use:   "upload <path>",
	Short: "Upload a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsUpload,
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List uploaded documents",
	RunE:  runDocsList,
}

var docsDeleteCmd = &cobra.Command{
	Use:   "delete <document-id>",
	Short: "Delete a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsDelete,
}

var docsStatusCmd = &cobra.Command{
	Use:   "status <document-id>",
	Short: "Show a document's processing status",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsStatus,
}

func init() {
	docsUploadCmd.Flags().BoolVarP(&docsWait, "wait", "w", false, "Wait until processing finishes")
	docsStatusCmd.Flags().BoolVarP(&docsWatch, "watch", "w", false, "Poll until processing finishes")
	docsCmd.AddCommand(docsUploadCmd)
	docsCmd.AddCommand(docsListCmd)
	docsCmd.AddCommand(docsDeleteCmd)
	docsCmd.AddCommand(docsStatusCmd)
}

// Extensions the server accepts whose MIME type the host table may lack.
var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".txt":  "text/plain",
	".md":   "text/markdown",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".json": "application/json",
	".html": "text/html",
	".htm":  "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
}

func detectContentType(path string, f *os.File) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	head := make([]byte, 512)
	n, _ := f.Read(head)
	_, _ = f.Seek(0, io.SeekStart)
	return http.DetectContentType(head[:n])
}

func runDocsUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	file := domain.File{
		Name:        filepath.Base(path),
		ContentType: detectContentType(path, f),
		SizeBytes:   info.Size(),
		Body:        f,
	}
	doc, err := docchat.Ingestion.Upload(ctx, file)
	if err != nil {
		return err
	}
	if docsWait && !doc.Status.Terminal() {
		if outputFormat == "text" {
			fmt.Fprintln(cmd.ErrOrStderr(), styles.Muted.Render("Uploaded "+doc.ID+", waiting for processing..."))
		}
		doc, err = watchDocument(cmd, doc.ID)
		if err != nil {
			return err
		}
	}
	return renderDocument(cmd.OutOrStdout(), doc)
}

// watchDocument polls until the document reaches a terminal status and
// prints each distinct status on the way in text mode.
func watchDocument(cmd *cobra.Command, id string) (domain.Document, error) {
	ctx := cmd.Context()
	p := docchat.Ingestion.PollStatus(ctx, id)
	defer p.Stop()
	var last domain.DocumentStatus
	for {
		select {
		case doc := <-p.Updates():
			if outputFormat == "text" && doc.Status != last {
				last = doc.Status
				fmt.Fprintln(cmd.ErrOrStderr(), styles.Status(view.StatusToColor(doc.Status), view.StatusLabel(doc.Status)))
			}
		case <-p.Done():
			return p.Wait(ctx)
		case <-ctx.Done():
			return domain.Document{}, ctx.Err()
		}
	}
}

func renderDocument(w io.Writer, doc domain.Document) error {
	row := view.DocumentRows([]domain.Document{doc})[0]
	return render(w, doc, func(w io.Writer) {
		fmt.Fprintln(w, styles.Title.Render(row.Filename))
		fmt.Fprintf(w, "id:       %s\n", row.ID)
		fmt.Fprintf(w, "status:   %s\n", styles.Status(row.Color, row.Status))
		fmt.Fprintf(w, "size:     %s\n", row.Size)
		fmt.Fprintf(w, "uploaded: %s\n", row.Uploaded)
		if row.Chunks != "" {
			fmt.Fprintf(w, "chunks:   %s\n", row.Chunks)
		}
		if row.Error != "" {
			fmt.Fprintln(w, styles.Error.Render(row.Error))
		}
	})
}

func runDocsList(cmd *cobra.Command, args []string) error {
	docs, err := docchat.Ingestion.List(cmd.Context())
	if err != nil {
		return err
	}
	rows := view.DocumentRows(docs)
	return render(cmd.OutOrStdout(), rows, func(w io.Writer) {
		cells := make([][]string, 0, len(rows))
		for _, r := range rows {
			cells = append(cells, []string{r.ID, r.Filename, r.Size, styles.Status(r.Color, r.Status), r.Uploaded})
		}
		table(w, []string{"ID", "FILENAME", "SIZE", "STATUS", "UPLOADED"}, cells)
	})
}

func runDocsDelete(cmd *cobra.Command, args []string) error {
	if err := docchat.Ingestion.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), map[string]string{"deleted": args[0]}, func(w io.Writer) {
		fmt.Fprintln(w, "Deleted document "+args[0])
	})
}

func runDocsStatus(cmd *cobra.Command, args []string) error {
	if docsWatch {
		doc, err := watchDocument(cmd, args[0])
		if err != nil {
			return err
		}
		return renderDocument(cmd.OutOrStdout(), doc)
	}
	ctx := cmd.Context()
	p := docchat.Ingestion.PollStatus(ctx, args[0])
	select {
	case <-p.Updates():
	case <-p.Done():
	case <-ctx.Done():
	}
	p.Stop()
	doc, ok := p.Latest()
	if !ok {
		if err := p.Err(); err != nil {
			return err
		}
		return ctx.Err()
	}
	return renderDocument(cmd.OutOrStdout(), doc)
}
