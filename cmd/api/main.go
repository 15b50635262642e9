// cmd/api/main.go
// Main entry point for the application
// This file bootstraps all components and starts the server

package main

import (
    "context"
    "encoding/json"
    "fmt"
    "log"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/aws/aws-sdk-go/aws"
    "github.com/aws/aws-sdk-go/aws/session"
    "github.com/gorilla/mux"
    "github.com/jmoiron/sqlx"
    "github.com/joho/godotenv"
    "github.com/prometheus/client_golang/prometheus/promhttp"

    // Internal packages
    "github.com/amoradating/amora-backend/internal/auth"
    "github.com/amoradating/amora-backend/internal/common/database"
    "github.com/amoradating/amora-backend/internal/config"
    "github.com/amoradating/amora-backend/internal/dating"
    "github.com/amoradating/amora-backend/internal/messaging"
    "github.com/amoradating/amora-backend/internal/profile"
)

var startTime = time.Now()

func main() {
    // Enable detailed logging
    log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

    log.Println("========================================")
    log.Println("🚀 Starting Amora Dating API")
    log.Println("========================================")

    // 1. Load environment variables
    log.Println("📁 Step 1: Loading .env file...")
    if err := godotenv.Load(); err != nil {
        log.Printf("⚠️  Warning: No .env file found (%v), using environment variables", err)
    } else {
        log.Println("✅ .env file loaded successfully")
    }

    // 2. Load configuration
    log.Println("\n📋 Step 2: Loading configuration...")
    cfg := config.Load()
    log.Printf("✅ Configuration loaded")

    // 3. Validate configuration
    log.Println("\n✔️  Step 3: Validating configuration...")
    if err := cfg.Validate(); err != nil {
        log.Fatal("❌ Configuration validation failed:", err)
    }
    log.Println("✅ Configuration is valid")

    // 4. Connect to PostgreSQL
    log.Println("\n🗄️  Step 4: Connecting to PostgreSQL...")
    db, err := database.NewPostgresDBFromURL(cfg.DatabaseURL)
    if err != nil {
        log.Fatal("❌ Failed to connect to PostgreSQL:", err)
    }
    defer db.Close()

    if err := db.Ping(); err != nil {
        log.Fatal("❌ Failed to ping PostgreSQL:", err)
    }
    log.Println("✅ Connected to PostgreSQL successfully")

    // 5. Connect to Redis
    // Redis is required: the daily like quota lives there
    log.Println("\n📮 Step 5: Connecting to Redis...")
    redisClient, err := database.NewRedisClientFromURL(cfg.RedisURL)
    if err != nil {
        log.Fatal("❌ Failed to connect to Redis:", err)
    }
    defer redisClient.Close()
    log.Println("✅ Connected to Redis successfully")

    // 6. Run database migrations
    log.Println("\n🔨 Step 6: Running database migrations...")
    if err := runMigrations(db); err != nil {
        log.Printf("❌ Migration error: %v", err)
        log.Fatal("Failed to run migrations")
    }
    log.Println("✅ Database migrations completed")

    // 7. Initialize Profile system
    log.Println("\n👤 Step 7: Initializing Profile system...")

    profileRepo := profile.NewPostgresRepository(db)

    // Rewrite any legacy media galleries into the current envelope shape
    if normalizer, ok := profileRepo.(interface {
        NormalizeLegacyMedia(ctx context.Context) (int64, error)
    }); ok {
        rewritten, err := normalizer.NormalizeLegacyMedia(context.Background())
        if err != nil {
            log.Printf("⚠️  Warning: legacy media normalization failed: %v", err)
        } else if rewritten > 0 {
            log.Printf("   ✅ Normalized %d legacy media galleries", rewritten)
        }
    }

    profileService := profile.NewService(profileRepo)
    profileHandler := profile.NewHandler(profileService)
    log.Println("✅ Profile system initialized")

    // 8. Initialize Auth system
    log.Println("\n🔐 Step 8: Initializing authentication system...")

    authService := auth.NewService(cfg.JWTSecret, "amora-backend")
    authMiddleware := auth.NewMiddleware(authService)
    log.Println("✅ Authentication system initialized")

    // 9. Initialize Messaging module
    log.Println("\n💬 Step 9: Initializing Messaging module...")

    // The messaging repository doubles as the match membership oracle for
    // the presence registry and as the block oracle for discovery
    messagingRepo := messaging.NewPostgresRepository(db)

    registry := messaging.NewRegistry(messagingRepo)
    hub := messaging.NewHub(registry)
    go hub.Run()
    log.Println("   ✅ WebSocket hub started")

    // Push notifications (FCM)
    var pushService messaging.PushService
    if cfg.EnablePushNotifications && fileExists(cfg.FCMCredentialsFile) {
        pushService, err = messaging.NewPushService(cfg.FCMCredentialsFile, messagingRepo)
        if err != nil {
            log.Printf("   ⚠️  Warning: Push notifications disabled: %v", err)
            pushService = messaging.NewMockPushService()
        } else {
            log.Println("   ✅ Firebase push notifications enabled")
        }
    } else {
        pushService = messaging.NewMockPushService()
        log.Println("   📝 Using mock push service (development mode)")
    }

    // Media storage for chat attachments
    var messagingStorage messaging.StorageService
    if cfg.UseS3 {
        awsSession, err := session.NewSession(&aws.Config{
            Region: aws.String(cfg.S3Region),
        })
        if err != nil {
            log.Printf("   ⚠️  Warning: AWS session creation failed, using local storage: %v", err)
            messagingStorage = messaging.NewLocalStorage(cfg.LocalUploadDir, cfg.BaseURL+"/uploads", cfg.MaxMediaSize)
        } else {
            messagingStorage = messaging.NewS3Storage(awsSession, cfg.S3Bucket, cfg.BaseURL, cfg.MaxMediaSize)
            log.Println("   ✅ Using S3 for message media storage")
        }
    } else {
        messagingStorage = messaging.NewLocalStorage(cfg.LocalUploadDir, cfg.BaseURL+"/uploads", cfg.MaxMediaSize)
        log.Println("   ✅ Using local storage for message media")
    }

    messagingService := messaging.NewService(messagingRepo, hub, pushService, cfg.PushTimeout)
    messagingHandler := messaging.NewHandler(messagingService, hub, messagingStorage)

    log.Println("✅ Messaging module initialized")

    // 10. Initialize Dating module
    log.Println("\n💘 Step 10: Initializing Dating module...")

    datingRepo := dating.NewPostgresRepository(db)
    likeQuota := dating.NewLikeQuota(redisClient)
    boostPolicy := dating.NewBoostPolicy(datingRepo, cfg.MaxBoostMinutes)

    swipeConfig := dating.SwipeConfig{
        FreeDailyLikes:    cfg.FreeDailyLikes,
        PremiumDailyLikes: cfg.PremiumDailyLikes,
        UndoWindow:        cfg.UndoWindow,
        ShowLikerProfile:  cfg.ShowLikerProfile,
    }

    // Match and like events flow back out through the WebSocket hub, with
    // a push fallback for offline users
    swipeNotifier := messaging.NewSwipeNotifier(hub, pushService, cfg.PushTimeout)
    swipeService := dating.NewSwipeService(datingRepo, likeQuota, swipeNotifier, swipeConfig)

    candidateSource := dating.NewProfileCandidateSource(profileRepo)
    discoveryService := dating.NewDiscoveryService(candidateSource, datingRepo, boostPolicy, messagingRepo)

    discoverDefaults := dating.DiscoverOptions{
        MinScorePercent: cfg.DefaultMinScorePercent,
        SortBy:          "score",
    }

    datingHandler := dating.NewHandler(
        discoveryService,
        swipeService,
        boostPolicy,
        swipeConfig,
        discoverDefaults,
        cfg.DefaultBoostMinutes,
    )

    // Background sweep deactivates boosts past their end time
    schedulerCtx, stopScheduler := context.WithCancel(context.Background())
    defer stopScheduler()
    boostScheduler := dating.NewScheduler(boostPolicy, cfg.BoostSweepInterval)
    boostScheduler.Start(schedulerCtx)
    log.Println("   ✅ Boost expiry scheduler started")

    log.Println("✅ Dating module initialized")

    // 11. Setup routes
    log.Println("\n🛣️  Step 11: Setting up routes...")
    router := mux.NewRouter()

    // Static files for uploads
    if !cfg.UseS3 {
        router.PathPrefix("/uploads/").Handler(
            http.StripPrefix("/uploads/",
                http.FileServer(http.Dir(cfg.LocalUploadDir))))
        log.Println("   ✅ Static file server configured")
    }

    // Health check and metrics
    router.HandleFunc("/health", healthCheck).Methods("GET")
    router.HandleFunc("/api", apiInfo).Methods("GET")
    router.Handle("/metrics", promhttp.Handler()).Methods("GET")

    profile.RegisterRoutes(router, profileHandler, authMiddleware)
    log.Println("   ✅ Profile routes registered")

    dating.RegisterRoutes(router, datingHandler, authMiddleware)
    log.Println("   ✅ Dating routes registered")

    messaging.RegisterRoutes(router, messagingHandler, authMiddleware)
    log.Println("   ✅ Messaging routes registered")

    // Add middleware
    router.Use(loggingMiddleware)
    router.Use(corsMiddleware)

    // 12. Create and start HTTP server
    srv := &http.Server{
        Addr:         fmt.Sprintf(":%s", cfg.Port),
        Handler:      router,
        ReadTimeout:  15 * time.Second,
        WriteTimeout: 15 * time.Second,
        IdleTimeout:  60 * time.Second,
    }

    go func() {
        log.Println("\n========================================")
        log.Printf("🚀 Server starting on http://localhost%s", srv.Addr)
        log.Printf("🌍 Environment: %s", cfg.Environment)
        log.Println("========================================")

        if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
            log.Fatal("❌ Failed to start server:", err)
        }
    }()

    // Wait for interrupt signal
    quit := make(chan os.Signal, 1)
    signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
    <-quit

    log.Println("\n⚠️  Shutdown signal received...")

    // Stop background jobs and drain WebSocket connections
    stopScheduler()
    log.Println("   - Shutting down messaging hub...")
    hub.Shutdown()

    // Graceful server shutdown
    ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
    defer cancel()

    if err := srv.Shutdown(ctx); err != nil {
        log.Fatal("❌ Server forced to shutdown:", err)
    }

    log.Println("✅ Server exited gracefully")
}

// Check if file exists
func fileExists(filename string) bool {
    if filename == "" {
        return false
    }
    info, err := os.Stat(filename)
    if os.IsNotExist(err) {
        return false
    }
    return err == nil && !info.IsDir()
}

// healthCheck returns server health status
func healthCheck(w http.ResponseWriter, r *http.Request) {
    response := map[string]interface{}{
        "status":    "healthy",
        "timestamp": time.Now().Format(time.RFC3339),
        "uptime":    time.Since(startTime).String(),
    }

    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(http.StatusOK)
    json.NewEncoder(w).Encode(response)
}

// apiInfo returns API information
func apiInfo(w http.ResponseWriter, r *http.Request) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(http.StatusOK)
    w.Write([]byte(`{
        "name": "Amora Dating API",
        "version": "1.0.0",
        "status": "running",
        "endpoints": {
            "health": "GET /health",
            "metrics": "GET /metrics",
            "profile": {
                "create": "POST /api/v1/profile",
                "me": "GET /api/v1/profile",
                "update": "PUT /api/v1/profile",
                "media": "PUT /api/v1/profile/media",
                "pause": "POST /api/v1/profile/pause",
                "resume": "POST /api/v1/profile/resume",
                "get": "GET /api/v1/users/{id}/profile"
            },
            "dating": {
                "discover": "GET /api/v1/dating/discover",
                "compatibility": "GET /api/v1/dating/compatibility/{userId}",
                "like": "POST /api/v1/dating/like",
                "pass": "POST /api/v1/dating/pass",
                "undo": "POST /api/v1/dating/undo",
                "resetPasses": "POST /api/v1/dating/passes/reset",
                "quota": "GET /api/v1/dating/quota",
                "matches": "GET /api/v1/dating/matches",
                "unmatch": "POST /api/v1/dating/matches/{id}/unmatch",
                "boost": "POST /api/v1/dating/boost",
                "boostStatus": "GET /api/v1/dating/boost"
            },
            "messaging": {
                "websocket": "GET /ws",
                "send": "POST /api/v1/messages",
                "list": "GET /api/v1/messages/matches/{id}",
                "seen": "POST /api/v1/messages/seen",
                "typing": "POST /api/v1/messages/typing",
                "delete": "DELETE /api/v1/messages/{id}",
                "block": "POST /api/v1/messages/block/{userId}",
                "unblock": "POST /api/v1/messages/unblock/{userId}",
                "pushTokens": "POST /api/v1/messages/push-tokens",
                "upload": "POST /api/v1/messages/upload"
            }
        }
    }`))
}

// Middleware functions

// loggingMiddleware logs all requests
func loggingMiddleware(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        start := time.Now()

        log.Printf("→ %s %s from %s", r.Method, r.RequestURI, r.RemoteAddr)

        // Wrap response writer to capture status code
        wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

        next.ServeHTTP(wrapped, r)

        duration := time.Since(start)
        log.Printf("← %s %s [%d] %v", r.Method, r.RequestURI, wrapped.statusCode, duration)
    })
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
    http.ResponseWriter
    statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
    rw.statusCode = code
    rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.Header().Set("Access-Control-Allow-Origin", "*")
        w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
        w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

        if r.Method == "OPTIONS" {
            w.WriteHeader(http.StatusOK)
            return
        }

        next.ServeHTTP(w, r)
    })
}

// runMigrations executes database migrations
func runMigrations(db *sqlx.DB) error {
    log.Println("   - Creating/updating tables...")

    migrations := []string{
        // Profiles table. The structured sections live in JSONB columns;
        // coordinates are split out so the discovery query can read them
        // without unpacking JSON.
        `CREATE TABLE IF NOT EXISTS profiles (
            user_id BIGINT PRIMARY KEY,
            basic_info JSONB NOT NULL DEFAULT '{}',
            dating_preferences JSONB NOT NULL DEFAULT '{}',
            lifestyle JSONB NOT NULL DEFAULT '{}',
            personal_details JSONB NOT NULL DEFAULT '{}',
            media JSONB NOT NULL DEFAULT '[]',
            latitude DOUBLE PRECISION NOT NULL DEFAULT 0,
            longitude DOUBLE PRECISION NOT NULL DEFAULT 0,
            is_paused BOOLEAN NOT NULL DEFAULT FALSE,
            is_hidden BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,

        // Likes and passes share a shape; the unique pair index makes
        // duplicate swipes idempotent at the database level
        `CREATE TABLE IF NOT EXISTS likes (
            id BIGSERIAL PRIMARY KEY,
            actor_id BIGINT NOT NULL,
            target_id BIGINT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
        `CREATE UNIQUE INDEX IF NOT EXISTS idx_likes_pair ON likes(actor_id, target_id)`,

        `CREATE TABLE IF NOT EXISTS passes (
            id BIGSERIAL PRIMARY KEY,
            actor_id BIGINT NOT NULL,
            target_id BIGINT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
        `CREATE UNIQUE INDEX IF NOT EXISTS idx_passes_pair ON passes(actor_id, target_id)`,

        // Matches store the pair normalized (user1_id < user2_id) so the
        // unique index covers both like orderings
        `CREATE TABLE IF NOT EXISTS matches (
            id BIGSERIAL PRIMARY KEY,
            user1_id BIGINT NOT NULL,
            user2_id BIGINT NOT NULL,
            chat_enabled BOOLEAN NOT NULL DEFAULT TRUE,
            call_enabled BOOLEAN NOT NULL DEFAULT FALSE,
            status VARCHAR(20) NOT NULL DEFAULT 'active',
            expires_at TIMESTAMPTZ,
            unmatched_by BIGINT,
            matched_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
        `CREATE UNIQUE INDEX IF NOT EXISTS idx_matches_pair ON matches(user1_id, user2_id)`,

        `CREATE TABLE IF NOT EXISTS messages (
            id BIGSERIAL PRIMARY KEY,
            match_id BIGINT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
            sender_id BIGINT NOT NULL,
            receiver_id BIGINT NOT NULL,
            text TEXT,
            media_url TEXT,
            status VARCHAR(20) NOT NULL DEFAULT 'sent',
            is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            seen_at TIMESTAMPTZ
        )`,
        `CREATE INDEX IF NOT EXISTS idx_messages_match ON messages(match_id, created_at DESC)`,
        `CREATE INDEX IF NOT EXISTS idx_messages_receiver_status ON messages(match_id, receiver_id, status)`,

        `CREATE TABLE IF NOT EXISTS blocks (
            id BIGSERIAL PRIMARY KEY,
            blocker_id BIGINT NOT NULL,
            blocked_id BIGINT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
        `CREATE UNIQUE INDEX IF NOT EXISTS idx_blocks_pair ON blocks(blocker_id, blocked_id)`,

        // At most one active boost per user, enforced by a partial index
        `CREATE TABLE IF NOT EXISTS boosts (
            id BIGSERIAL PRIMARY KEY,
            user_id BIGINT NOT NULL,
            start_time TIMESTAMPTZ NOT NULL,
            end_time TIMESTAMPTZ NOT NULL,
            is_active BOOLEAN NOT NULL DEFAULT TRUE
        )`,
        `CREATE UNIQUE INDEX IF NOT EXISTS idx_boosts_active_user ON boosts(user_id) WHERE is_active`,

        `CREATE TABLE IF NOT EXISTS subscriptions (
            id BIGSERIAL PRIMARY KEY,
            user_id BIGINT NOT NULL,
            status VARCHAR(20) NOT NULL DEFAULT 'active',
            expires_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
        `CREATE INDEX IF NOT EXISTS idx_subscriptions_user ON subscriptions(user_id)`,

        `CREATE TABLE IF NOT EXISTS push_tokens (
            id BIGSERIAL PRIMARY KEY,
            user_id BIGINT NOT NULL,
            token TEXT NOT NULL UNIQUE,
            platform VARCHAR(20) NOT NULL,
            is_active BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
        `CREATE INDEX IF NOT EXISTS idx_push_tokens_user ON push_tokens(user_id) WHERE is_active`,
    }

    for i, migration := range migrations {
        if _, err := db.Exec(migration); err != nil {
            return fmt.Errorf("migration %d failed: %w", i+1, err)
        }
    }

    return nil
}
