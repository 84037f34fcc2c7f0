// Comando initdb cria a tabela de vendas e os índices de apoio sem subir a API
package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-analytics-api/infrastructure/database"
	"github.com/vfg2006/sales-analytics-api/internal/config"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	logrus.Info("Iniciando criação do schema de vendas...")

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	startTime := time.Now()

	store, err := database.Open(ctx, cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("ERRO ao conectar ao banco de dados")
	}
	defer store.Close()

	logrus.WithField("driver", store.Dialect().Name).Info("Conexão com o banco de dados estabelecida com sucesso")

	if err := store.Initialize(ctx); err != nil {
		logrus.WithError(err).Fatal("ERRO ao criar o schema")
	}

	logrus.Infof("Tabela %s pronta", database.SalesTable)
	for _, index := range database.SalesIndexes {
		logrus.Infof("Índice %s (%s) pronto", index.Name, index.Columns)
	}

	logrus.Infof("Schema criado em %v", time.Since(startTime))
}
