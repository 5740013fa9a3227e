package main

import (
	"context"
	"database/sql"
	"time"

	nethttp "net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/phuslu/log"

	api "github.com/acadia-lms/acadia/internal/api/http"
	"github.com/acadia-lms/acadia/internal/auth"
	"github.com/acadia-lms/acadia/internal/config"
	"github.com/acadia-lms/acadia/internal/db"
	"github.com/acadia-lms/acadia/internal/exam"
	"github.com/acadia-lms/acadia/internal/examgen"
	"github.com/acadia-lms/acadia/internal/grading"
	"github.com/acadia-lms/acadia/internal/rbac"
	"github.com/acadia-lms/acadia/internal/storage"
)

func main() {
	cfg := config.FromEnv()

	log.DefaultLogger = log.Logger{
		Level:      log.InfoLevel,
		TimeFormat: time.RFC3339,
		Writer:     &log.ConsoleWriter{ColorOutput: false},
	}

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db open failed")
	}
	if err := seedAdmin(ctx, dbh, cfg); err != nil {
		log.Fatal().Err(err).Msg("admin seed failed")
	}
	store := exam.NewSQLStore(dbh)

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("blob store")
	}

	authSvc := auth.NewAuthService(cfg.AuthSecret)
	gen := examgen.NewSeededGenerator(cfg.ExamSeed)
	grader := grading.NewGrader()

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))

	// Protected API (JWT → subject+role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.Route("/courses", func(cr chi.Router) {
			cr.With(rbac.Require("course:create")).Post("/", api.CreateCourseHandler(dbh))
			cr.With(rbac.Require("course:view")).Get("/", api.ListCoursesHandler(dbh))
			cr.With(rbac.Require("course:view")).Get("/{courseID}", api.GetCourseHandler(dbh))
			cr.With(rbac.Require("course:update")).Put("/{courseID}", api.UpdateCourseHandler(dbh))
			cr.With(rbac.Require("course:update")).Delete("/{courseID}", api.DeleteCourseHandler(dbh))

			cr.With(rbac.Require("course:update")).Post("/{courseID}/sections", api.CreateSectionHandler(dbh))
			cr.With(rbac.Require("course:view")).Get("/{courseID}/sections", api.ListSectionsHandler(dbh))

			cr.With(rbac.Require("enrollment:manage")).Post("/{courseID}/enrollments", api.EnrollHandler(dbh))
			cr.With(rbac.Require("enrollment:view")).Get("/{courseID}/enrollments", api.ListEnrollmentsHandler(dbh))
			cr.With(rbac.Require("enrollment:manage")).Delete("/{courseID}/enrollments/{studentID}", api.UnenrollHandler(dbh))
			cr.With(rbac.Require("grade:set")).Put("/{courseID}/grades/{studentID}", api.SetGradeHandler(dbh))

			cr.With(rbac.Require("material:upload")).Post("/{courseID}/materials", api.UploadMaterialHandler(dbh, bs))
			cr.With(rbac.Require("material:view")).Get("/{courseID}/materials", api.ListMaterialsHandler(dbh))

			cr.With(rbac.Require("exam:generate")).Post("/{courseID}/exams", api.GenerateExamHandler(dbh, bs, store, gen))
			cr.With(rbac.Require("exam:view")).Get("/{courseID}/exams", api.ListExamsHandler(store))
		})

		pr.Route("/students", func(sr chi.Router) {
			sr.With(rbac.Require("enrollment:manage")).Post("/", api.CreateStudentHandler(dbh))
			sr.With(rbac.Require("student:view")).Get("/", api.ListStudentsHandler(dbh))
			sr.With(rbac.Require("student:view")).Get("/{studentID}", api.GetStudentHandler(dbh))
			sr.With(rbac.RequireOwnerOr("grade:view", ownerParam("studentID"))).
				Get("/{studentID}/grades", api.StudentGradesHandler(dbh))
		})

		pr.Route("/sections/{sectionID}", func(scr chi.Router) {
			scr.With(rbac.Require("course:view")).Get("/", api.GetSectionHandler(dbh))
			scr.With(rbac.Require("course:update")).Put("/", api.UpdateSectionHandler(dbh))
			scr.With(rbac.Require("course:update")).Delete("/", api.DeleteSectionHandler(dbh))
			scr.With(rbac.Require("enrollment:manage")).Post("/enrollments", api.SectionEnrollHandler(dbh))
			scr.With(rbac.Require("enrollment:view")).Get("/enrollments", api.ListSectionEnrollmentsHandler(dbh))
		})

		pr.Route("/materials/{materialID}", func(mr chi.Router) {
			mr.With(rbac.Require("material:view")).Get("/", api.DownloadMaterialHandler(dbh, bs))
			mr.With(rbac.Require("material:delete")).Delete("/", api.DeleteMaterialHandler(dbh, bs))
		})

		pr.Route("/exams/{examID}", func(er chi.Router) {
			er.With(rbac.Require("exam:view")).Get("/", api.GetExamHandler(store))
			er.With(rbac.Require("exam:generate")).Delete("/", api.DeleteExamHandler(store, bs))
			er.With(rbac.Require("exam:view")).Get("/document", api.ExamDocumentHandler(store, bs, "exam"))
			er.With(rbac.Require("exam:download")).Get("/answer-key", api.ExamDocumentHandler(store, bs, "answer-key"))
			er.With(rbac.Require("exam:download")).Get("/answer-sheet", api.ExamDocumentHandler(store, bs, "answer-sheet"))
			er.With(rbac.Require("attempt:create")).Post("/attempts", api.StartAttemptHandler(store))
			er.With(rbac.Require("attempt:view")).Get("/attempts", api.ListAttemptsHandler(store))
		})

		pr.Route("/attempts/{attemptID}", func(ar chi.Router) {
			ar.With(rbac.RequireAny("attempt:view", "attempt:view:self")).Get("/", api.GetAttemptHandler(store))
			ar.With(rbac.Require("attempt:submit")).Post("/responses", api.SaveResponsesHandler(store))
			ar.With(rbac.Require("attempt:submit")).Post("/submit", api.SubmitAttemptHandler(store, grader))
		})
	})

	r.Get("/healthz", func(w nethttp.ResponseWriter, r *nethttp.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			w.WriteHeader(503)
			return
		}
		w.WriteHeader(200)
	})

	log.Info().Str("addr", cfg.HTTPAddr).Str("db", cfg.DBDriver).Msg("listening")
	if err := nethttp.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func ownerParam(name string) func(*nethttp.Request) string {
	return func(r *nethttp.Request) string {
		return chi.URLParam(r, name)
	}
}

// seedAdmin makes sure a login exists on first boot.
func seedAdmin(ctx context.Context, dbh *sql.DB, cfg config.Config) error {
	var n int
	if err := dbh.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE username = $1`, cfg.AdminUser).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err := dbh.ExecContext(ctx, `
INSERT INTO users (id, username, pass_hash, role, full_name, email, created_at)
VALUES ($1,$2,$3,'admin','Administrator','',$4)`,
		uuid.NewString(), cfg.AdminUser, cfg.AdminPassHash, time.Now().Unix())
	return err
}
