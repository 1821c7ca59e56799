package config

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ParameterLister is the subset of the SSM client used to pull secrets.
type ParameterLister interface {
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// LoadSSMParameters reads every parameter under prefix (decrypted) and returns them keyed
// by the last path segment, e.g. /studio/prod/JWT_SECRET -> JWT_SECRET.
func LoadSSMParameters(ctx context.Context, client ParameterLister, prefix string) (map[string]string, error) {
	params := make(map[string]string)

	var nextToken *string
	for {
		out, err := client.GetParametersByPath(ctx, &ssm.GetParametersByPathInput{
			Path:           aws.String(prefix),
			Recursive:      aws.Bool(true),
			WithDecryption: aws.Bool(true),
			NextToken:      nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("get parameters under %s: %w", prefix, err)
		}

		for _, p := range out.Parameters {
			name := strings.TrimSpace(path.Base(aws.ToString(p.Name)))
			if name == "" || name == "/" {
				continue
			}
			params[name] = aws.ToString(p.Value)
		}

		if out.NextToken == nil || aws.ToString(out.NextToken) == "" {
			break
		}
		nextToken = out.NextToken
	}

	return params, nil
}

// ApplySSM merges parameters from SSM_PARAMETER_PATH into c when that key is set.
// Returns the number of parameters applied.
func ApplySSM(ctx context.Context, c Config) (int, error) {
	prefix := GetString(c, "SSM_PARAMETER_PATH", "")
	if prefix == "" {
		return 0, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(GetString(c, "AWS_REGION", "us-east-1")))
	if err != nil {
		return 0, fmt.Errorf("load aws config: %w", err)
	}

	params, err := LoadSSMParameters(ctx, ssm.NewFromConfig(awsCfg), prefix)
	if err != nil {
		return 0, err
	}

	c.Merge(params)
	return len(params), nil
}
