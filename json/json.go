package json

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/nhc-net/nsg-sync/types"
)

type IJsonClient interface {
	Export(summary types.RunSummary, fileName string)
}

type JsonClient struct {
	WorkingFolderPath string
	Logger            *logrus.Logger
}

func NewJsonClient(workingFolderPath string, logger *logrus.Logger) *JsonClient {
	return &JsonClient{
		WorkingFolderPath: workingFolderPath,
		Logger:            logger,
	}
}

func (jsonClient *JsonClient) Export(summary types.RunSummary, fileName string) {
	jsonSummary, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		jsonClient.Logger.Fatal("Error during Marshal(): ", err)
	}
	jsonFilePath := filepath.Join(jsonClient.WorkingFolderPath, fileName)
	err = os.WriteFile(jsonFilePath, jsonSummary, 0644)
	if err != nil {
		jsonClient.Logger.Fatal("Error writing file: ", err)
	}
	jsonClient.Logger.Infof("Run summary written to %s", jsonFilePath)
}
