package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/spf13/viper"
)

// ApplySSMParameters copies every parameter below path into viper. A parameter
// named <path>/firehose_stream sets the firehose_stream key; nested names are
// joined with dots. Keys whose flag was set explicitly are left alone.
func ApplySSMParameters(ctx context.Context, client ssm.GetParametersByPathAPIClient, path string, changed func(key string) bool) (int, error) {
	path = "/" + strings.Trim(path, "/")
	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(path),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	})

	applied := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return applied, fmt.Errorf("failed to read SSM parameters under %s: %w", path, err)
		}

		for _, param := range page.Parameters {
			key := ParameterKey(path, aws.ToString(param.Name))
			if key == "" || (changed != nil && changed(key)) {
				continue
			}
			viper.Set(key, aws.ToString(param.Value))
			applied++
		}
	}

	return applied, nil
}

// ParameterKey turns an SSM parameter name into a configuration key.
func ParameterKey(path, name string) string {
	rel := strings.TrimPrefix(name, strings.TrimRight(path, "/"))
	rel = strings.Trim(rel, "/")
	return strings.ToLower(strings.ReplaceAll(rel, "/", "."))
}
