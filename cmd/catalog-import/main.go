// catalog-import seeds the metadata store from an existing directory tree of
// notes, one folder per program, holding .pdf and .pptx files. It writes the
// bytes into the local backend and catalogues each file, skipping programs
// that fail classification.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/chisomo-phiri/studyhub/internal/catalog"
	"github.com/chisomo-phiri/studyhub/internal/config"
	"github.com/chisomo-phiri/studyhub/internal/repositories"
	"github.com/chisomo-phiri/studyhub/internal/storage"
)

func main() {
	dir := flag.String("dir", "program", "directory holding one folder per program")
	semester := flag.String("semester", "1", "semester to catalogue imported files under")
	subject := flag.String("subject", "All Topics", "subject to catalogue imported files under")
	flag.Parse()

	cfg := config.Envs
	ctx := context.Background()

	db, err := repositories.Connect(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	blobs := storage.NewRouter(storage.NewLocal(cfg.UploadDir), nil, 0)
	indexer := catalog.NewIndexer(blobs, repositories.NewFileRepo(db), nil)

	programs, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatal("Failed to read import directory: ", err)
	}

	imported := 0
	for _, entry := range programs {
		if !entry.IsDir() {
			continue
		}
		program := entry.Name()
		if !catalog.ValidProgram(program) {
			log.Printf("Skipping %q: not a valid program classification", program)
			continue
		}

		files, err := os.ReadDir(filepath.Join(*dir, program))
		if err != nil {
			log.Printf("Skipping %q: %v", program, err)
			continue
		}

		for _, fe := range files {
			name := fe.Name()
			contentType := ""
			switch strings.ToLower(filepath.Ext(name)) {
			case ".pdf":
				contentType = "application/pdf"
			case ".pptx":
				contentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
			default:
				continue
			}

			src := filepath.Join(*dir, program, name)
			f, err := os.Open(src)
			if err != nil {
				log.Printf("Skipping %s: %v", src, err)
				continue
			}
			info, err := f.Stat()
			if err != nil {
				f.Close()
				log.Printf("Skipping %s: %v", src, err)
				continue
			}

			rec, err := indexer.Ingest(ctx, catalog.IngestInput{
				Program:     program,
				Semester:    *semester,
				Subject:     *subject,
				Filename:    name,
				ContentType: contentType,
				Size:        info.Size(),
				Body:        f,
			})
			f.Close()
			if err != nil {
				log.Printf("Failed to catalogue %s: %v", src, err)
				continue
			}
			log.Printf("Catalogued %s as %s", src, rec.ID)
			imported++
		}
	}

	log.Printf("Imported %d files", imported)
}
