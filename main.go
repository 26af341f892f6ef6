//
// weblog
// ======
// Backend-for-frontend of the TechBlog platform. The article collection
// lives upstream and is fetched once at boot; search, filtering, ranking
// and pagination run over the local cache, and the reader features
// (comments, bookmarks, newsletter) persist to a key-value store.
//
// Boot the server:
// ----------------
// $ go run . -upstream https://weblog-backend-cl78.onrender.com
//
// Client requests:
// ----------------
// $ curl http://localhost:3333/articles?category=AI&page=1
// $ curl http://localhost:3333/articles/search?q=react
// $ curl http://localhost:3333/articles/1/related
// $ curl -X POST -d '{"email":"reader@example.com"}' http://localhost:3333/newsletter
//
// Passing -routes prints the generated route docs instead of serving.
//
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/docgen"
	"github.com/go-chi/render"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/metric/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/global"
	export "go.opentelemetry.io/otel/sdk/export/metric"
	"go.opentelemetry.io/otel/sdk/metric/aggregator/histogram"
	controller "go.opentelemetry.io/otel/sdk/metric/controller/basic"
	processor "go.opentelemetry.io/otel/sdk/metric/processor/basic"
	selector "go.opentelemetry.io/otel/sdk/metric/selector/simple"

	"github.com/mamadkami/weblog/client"
	"github.com/mamadkami/weblog/internal/account"
	"github.com/mamadkami/weblog/internal/admin"
	"github.com/mamadkami/weblog/internal/article"
	"github.com/mamadkami/weblog/internal/bookmarks"
	"github.com/mamadkami/weblog/internal/comments"
	"github.com/mamadkami/weblog/internal/kvstore"
	"github.com/mamadkami/weblog/internal/newsletter"
	"github.com/mamadkami/weblog/internal/session"
	"github.com/mamadkami/weblog/internal/social"
	"github.com/mamadkami/weblog/internal/store"
)

const ServiceName = "weblog"

type CtxKey int8

const (
	CtxKeyLogger CtxKey = iota
)

type App struct {
	sugarLogger *zap.SugaredLogger
}

func main() {
	var (
		routes    = flag.Bool("routes", getEnvBool(ServiceName+"_ROUTES", false), "Generate router documentation")
		addr      = flag.String("addr", getEnv(ServiceName+"_ADDR", ":3333"), "application port")
		diagAddr  = flag.String("diag_addr", getEnv(ServiceName+"_DIAG_ADDR", ":9999"), "diag port")
		upstream  = flag.String("upstream", getEnv(ServiceName+"_UPSTREAM", "https://weblog-backend-cl78.onrender.com"), "upstream articles API base URL")
		redisAddr = flag.String("redis_addr", getEnv(ServiceName+"_REDIS_ADDR", ""), "redis address; empty keeps reader features in process memory")
	)

	flag.Parse()

	logger, _ := zap.NewProduction()
	defer logger.Sync() // flushes buffer, if any
	sugar := logger.Sugar()

	a := App{
		sugarLogger: sugar,
	}

	config := prometheus.Config{}
	c := controller.New(
		processor.New(
			selector.NewWithHistogramDistribution(
				histogram.WithExplicitBoundaries(config.DefaultHistogramBoundaries),
			),
			export.CumulativeExportKindSelector(),
			processor.WithMemory(true),
		),
	)
	exporter, err := prometheus.NewExporter(config, c)
	if err != nil {
		sugar.Panicf("failed to initialize prometheus exporter %v", err)
	}
	global.SetMeterProvider(exporter.MeterProvider())

	meter := global.Meter(ServiceName)
	labels := []attribute.KeyValue{
		attribute.String("status", "200")}
	completedCount := metric.Must(meter).NewInt64Counter(
		"http/server/completed_count",
		metric.WithDescription("Count of completed requests, by HTTP method and response status"),
	).Bind(labels...)
	defer completedCount.Unbind()

	var kv kvstore.Store
	if *redisAddr != "" {
		kv = kvstore.NewRedisStore(redis.NewClient(&redis.Options{Addr: *redisAddr}))
	} else {
		kv = kvstore.NewMemStore()
	}

	api := &client.Client{Addr: strings.TrimRight(*upstream, "/")}
	articleStore := store.New(api)
	sess := session.New(api, kv)

	ctx := context.Background()
	if err := articleStore.LoadAll(ctx); err != nil {
		// Diagnostic only: the service comes up with an empty collection
		// and no retry.
		sugar.Errorw("fetching articles", "upstream", *upstream, "error", err)
	}
	if err := sess.Resume(ctx); err != nil {
		sugar.Errorw("restoring session", "error", err)
	}

	articleRes := &article.Resource{
		Store: articleStore,
		Log:   sugar,
		Rand:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	accountRes := &account.Resource{Session: sess, Log: sugar}
	socialRes := &social.Resource{
		Comments:  comments.New(kv),
		Bookmarks: bookmarks.New(kv),
		News:      newsletter.New(kv),
		Store:     articleStore,
		Session:   sess,
		Log:       sugar,
	}
	adminRes := &admin.Resource{
		Store:    articleStore,
		Comments: socialRes.Comments,
		News:     socialRes.News,
		Log:      sugar,
	}

	r := chi.NewRouter()

	diagRouter := chi.NewRouter()
	diagRouter.Get("/metrics", exporter.ServeHTTP)

	r.Use(middleware.RequestID)
	r.Use(a.Logger)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.URLFormat)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, err := w.Write([]byte("root."))
		if err != nil {
			sugar.Errorw(err.Error())
		}
	})

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		logger := r.Context().Value(CtxKeyLogger).(*zap.SugaredLogger)
		logger.Infow("ping with middle")
		completedCount.Add(r.Context(), 1)
		_, err := w.Write([]byte("pong"))
		if err != nil {
			sugar.Errorw(err.Error())
		}
	})

	r.Mount("/articles", articleRes.Routes(accountRes.AdminOnly, socialRes.CommentRoutes))
	r.Mount("/bookmarks", socialRes.BookmarkRoutes())
	r.Post("/newsletter", socialRes.Subscribe)

	r.Post("/login", accountRes.Login)
	r.Post("/logout", accountRes.Logout)
	r.Get("/me", accountRes.Me)

	r.Mount("/admin", adminRes.Routes(accountRes.AdminOnly))

	// Passing -routes to the program will generate docs for the above
	// router definition instead of serving.
	if *routes {
		fmt.Println(docgen.MarkdownRoutesDoc(r, docgen.MarkdownOpts{
			ProjectPath: "github.com/mamadkami/weblog",
			Intro:       "Welcome to the weblog generated docs.",
		}))

		return
	}

	go func() {
		err = http.ListenAndServe(*addr, r)
		if err != nil {
			a.sugarLogger.Errorw(err.Error())
		}
	}()

	err = http.ListenAndServe(*diagAddr, diagRouter)
	if err != nil {
		a.sugarLogger.Errorw(err.Error())
	}
}

// Logger puts the service logger on the request context so handlers down
// the chain can pick it up.
func (a *App) Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), CtxKeyLogger, a.sugarLogger)))
	})
}
