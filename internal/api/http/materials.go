package http

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	nethttp "net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/phuslu/log"

	"github.com/acadia-lms/acadia/internal/rbac"
	"github.com/acadia-lms/acadia/internal/storage"
)

const maxUploadBytes = 32 << 20

var allowedUploadExts = map[string]string{
	".pdf":  "pdf",
	".doc":  "doc",
	".docx": "docx",
	".txt":  "txt",
}

type Material struct {
	ID         string `json:"id"`
	CourseID   string `json:"course_id"`
	FileName   string `json:"file_name"`
	FileType   string `json:"file_type"`
	PageCount  int    `json:"page_count,omitempty"`
	UploadedBy string `json:"uploaded_by"`
	UploadedAt int64  `json:"uploaded_at"`
}

// UploadMaterialHandler accepts a multipart "file" field, checks the
// extension against the allow list, stores the blob, and for PDFs probes
// the document with pdfcpu to reject encrypted files and record the page
// count.
func UploadMaterialHandler(dbh *sql.DB, blobs storage.BlobStore) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub, _ := rbac.SubjectFromContext(r.Context())
		courseID := chi.URLParam(r, "courseID")

		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			nethttp.Error(w, "bad multipart", nethttp.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			nethttp.Error(w, "missing file", nethttp.StatusBadRequest)
			return
		}
		defer file.Close()

		ext := strings.ToLower(path.Ext(header.Filename))
		ftype, ok := allowedUploadExts[ext]
		if !ok {
			nethttp.Error(w, "unsupported file type (pdf, doc, docx, txt)", nethttp.StatusUnsupportedMediaType)
			return
		}

		id := newID()
		key := fmt.Sprintf("courses/%s/materials/%s%s", courseID, id, ext)
		if _, err := blobs.Put(key, io.LimitReader(file, maxUploadBytes)); err != nil {
			nethttp.Error(w, "store error", nethttp.StatusInternalServerError)
			return
		}

		pageCount := 0
		if ftype == "pdf" {
			p, err := blobs.Abs(key)
			if err == nil {
				pdfCtx, rerr := api.ReadContextFile(p)
				if rerr != nil {
					_ = blobs.Delete(key)
					nethttp.Error(w, "unreadable pdf", nethttp.StatusUnprocessableEntity)
					return
				}
				if pdfCtx.Encrypt != nil {
					_ = blobs.Delete(key)
					nethttp.Error(w, "encrypted pdf not supported", nethttp.StatusUnprocessableEntity)
					return
				}
				pageCount = pdfCtx.PageCount
			}
		}

		m := Material{
			ID:         id,
			CourseID:   courseID,
			FileName:   header.Filename,
			FileType:   ftype,
			PageCount:  pageCount,
			UploadedBy: sub,
			UploadedAt: nowUnix(),
		}
		_, err = dbh.Exec(`
INSERT INTO materials (id, course_id, file_name, file_type, blob_key, page_count, uploaded_by, uploaded_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			m.ID, m.CourseID, m.FileName, m.FileType, key, m.PageCount, m.UploadedBy, m.UploadedAt)
		if err != nil {
			_ = blobs.Delete(key)
			nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
			return
		}
		log.Info().Str("material_id", id).Str("course_id", courseID).
			Str("type", ftype).Int("pages", pageCount).Msg("material uploaded")
		writeJSON(w, nethttp.StatusCreated, m)
	}
}

func ListMaterialsHandler(dbh *sql.DB) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		courseID := chi.URLParam(r, "courseID")
		rows, err := dbh.Query(`
SELECT id, course_id, file_name, file_type, page_count, uploaded_by, uploaded_at
  FROM materials WHERE course_id = $1 ORDER BY uploaded_at DESC`, courseID)
		if err != nil {
			nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
			return
		}
		defer rows.Close()
		out := []Material{}
		for rows.Next() {
			var m Material
			if err := rows.Scan(&m.ID, &m.CourseID, &m.FileName, &m.FileType, &m.PageCount, &m.UploadedBy, &m.UploadedAt); err != nil {
				nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
				return
			}
			out = append(out, m)
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

var contentTypes = map[string]string{
	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"txt":  "text/plain; charset=utf-8",
}

func DownloadMaterialHandler(dbh *sql.DB, blobs storage.BlobStore) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id := chi.URLParam(r, "materialID")
		var name, ftype, key string
		err := dbh.QueryRow(`SELECT file_name, file_type, blob_key FROM materials WHERE id = $1`, id).
			Scan(&name, &ftype, &key)
		if errors.Is(err, sql.ErrNoRows) {
			nethttp.Error(w, "not found", nethttp.StatusNotFound)
			return
		}
		if err != nil {
			nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
			return
		}
		rc, err := blobs.Get(key)
		if err != nil {
			nethttp.Error(w, "blob missing", nethttp.StatusInternalServerError)
			return
		}
		defer rc.Close()
		if ct, ok := contentTypes[ftype]; ok {
			w.Header().Set("Content-Type", ct)
		}
		disposition := "attachment"
		if r.URL.Query().Get("inline") == "1" {
			disposition = "inline"
		}
		w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, name))
		_, _ = io.Copy(w, rc)
	}
}

func DeleteMaterialHandler(dbh *sql.DB, blobs storage.BlobStore) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id := chi.URLParam(r, "materialID")
		var key string
		err := dbh.QueryRow(`SELECT blob_key FROM materials WHERE id = $1`, id).Scan(&key)
		if errors.Is(err, sql.ErrNoRows) {
			nethttp.Error(w, "not found", nethttp.StatusNotFound)
			return
		}
		if err != nil {
			nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
			return
		}
		if _, err := dbh.Exec(`DELETE FROM materials WHERE id = $1`, id); err != nil {
			nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
			return
		}
		if err := blobs.Delete(key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("blob delete failed")
		}
		w.WriteHeader(nethttp.StatusNoContent)
	}
}
