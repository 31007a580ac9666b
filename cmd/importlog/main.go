package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/sngm3741/inquiry-api/internal/config"
	"github.com/sngm3741/inquiry-api/internal/infrastructure/filelog"
	mongodoc "github.com/sngm3741/inquiry-api/internal/infrastructure/mongo"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type importOptions struct {
	envFile string
	logPath string
	drop    bool
	timeout time.Duration
}

func main() {
	opts := parseFlags()

	if opts.envFile != "" {
		if err := loadEnvFile(opts.envFile); err != nil {
			log.Fatalf("環境変数の読み込みに失敗しました: %v", err)
		}
	}

	cfg := config.Load()
	if cfg.MongoURI == "" {
		log.Fatal("MONGO_URI を指定してください")
	}
	if opts.logPath == "" {
		opts.logPath = cfg.InquiryLogPath
	}

	records, err := filelog.New(opts.logPath, cfg.ServerLog).ReadAll()
	if err != nil {
		log.Fatalf("問い合わせログの読み込みに失敗しました: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("MongoDB 接続に失敗しました: %v", err)
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	db := client.Database(cfg.MongoDatabase)
	if opts.drop {
		if err := db.Collection(cfg.InquiryCollection).Drop(ctx); err != nil {
			log.Printf("WARN: コレクション %s の削除に失敗: %v", cfg.InquiryCollection, err)
		}
	}

	repo := mongodoc.NewInquiryRepository(db, cfg.InquiryCollection)
	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("インデックス作成に失敗しました: %v", err)
	}

	written, err := repo.Import(ctx, records)
	if err != nil {
		log.Fatalf("問い合わせの投入に失敗しました: %v", err)
	}

	log.Printf("Import 完了: file=%s records=%d written=%d", opts.logPath, len(records), written)
	log.Printf("Mongo: %s / %s", cfg.MongoDatabase, cfg.InquiryCollection)
}

func parseFlags() importOptions {
	var opts importOptions
	flag.StringVar(&opts.envFile, "env-file", "", "読み込む env ファイル (任意)")
	flag.StringVar(&opts.logPath, "file", "", "問い合わせログのパス (既定: INQUIRY_LOG_PATH)")
	flag.BoolVar(&opts.drop, "drop", false, "既存コレクションを削除してから投入する")
	flag.DurationVar(&opts.timeout, "timeout", 60*time.Second, "処理全体のタイムアウト")
	flag.Parse()

	if opts.timeout <= 0 {
		log.Fatal("timeout は正の値を指定してください")
	}
	return opts
}

func loadEnvFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%s の読み込みに失敗しました: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if err := os.Setenv(strings.TrimSpace(key), value); err != nil {
			return err
		}
	}
	return scanner.Err()
}
