package valkeystore

import (
	"call-analysis-api/utils"
	"fmt"
	"os"
	"strings"

	"github.com/valkey-io/valkey-go"
	"github.com/valkey-io/valkey-go/valkeycompat"
	"go.uber.org/zap"
)

var Client valkeycompat.Cmdable
var RawClient valkey.Client

func InitValkey(logger *zap.Logger) {
	host := utils.MustGetEnv("VALKEY_HOST")
	port := utils.GetEnvOrDefault("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	useSentinel := utils.GetEnvBool("VALKEY_USE_SENTINEL")

	var vk valkey.Client
	var err error

	if useSentinel {
		sentinels := splitAddresses(os.Getenv("VALKEY_SENTINEL_ADDRESS"))
		if len(sentinels) == 0 {
			panic("VALKEY_USE_SENTINEL is true but VALKEY_SENTINEL_ADDRESS is not set")
		}
		masterName := utils.GetEnvOrDefault("VALKEY_SENTINEL_MASTER_NAME", "mymaster")

		logger.Info("Initializing distributed cache service with sentinel configuration")

		vk, err = valkey.NewClient(valkey.ClientOption{
			InitAddress: sentinels,
			Password:    password,
			Sentinel: valkey.SentinelOption{
				MasterSet: masterName,
			},
		})
	} else {
		logger.Info("Initializing cache service")

		vk, err = valkey.NewClient(valkey.ClientOption{
			InitAddress: []string{fmt.Sprintf("%s:%s", host, port)},
			Password:    password,
		})
	}

	if err != nil {
		panic(err)
	}

	RawClient = vk
	Client = valkeycompat.NewAdapter(vk)
	logger.Info("Cache service initialized successfully")
}

func Close() {
	if RawClient != nil {
		RawClient.Close()
	}
}

func splitAddresses(csv string) []string {
	parts := strings.Split(csv, ",")
	addresses := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			addresses = append(addresses, p)
		}
	}
	return addresses
}
