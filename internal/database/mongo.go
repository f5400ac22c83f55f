package database

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoClient MongoDBクライアントのラッパー
type MongoClient struct {
	Client   *mongo.Client
	Database string
}

// NewMongoClient 新しいMongoDBクライアントを作成して接続を確認する
func NewMongoClient(ctx context.Context) (*MongoClient, error) {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI環境変数が設定されていません")
	}

	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "geodata-api"
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, fmt.Errorf("MongoDBクライアントの初期化に失敗: %w", err)
	}

	// 接続テスト
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("MongoDBへの接続に失敗: %w", err)
	}

	return &MongoClient{
		Client:   client,
		Database: dbName,
	}, nil
}

// GetCollection 指定した名前のコレクションを取得する
func (mc *MongoClient) GetCollection(name string) *mongo.Collection {
	return mc.Client.Database(mc.Database).Collection(name)
}

// HealthCheck データベース接続のヘルスチェック
func (mc *MongoClient) HealthCheck(ctx context.Context) error {
	if mc.Client == nil {
		return fmt.Errorf("MongoDBクライアントが初期化されていません")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return mc.Client.Ping(pingCtx, readpref.Primary())
}

// Close データベース接続を閉じる
func (mc *MongoClient) Close(ctx context.Context) error {
	if mc.Client != nil {
		return mc.Client.Disconnect(ctx)
	}
	return nil
}
