package db

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// Connect builds the DynamoDB client and verifies the table is reachable
// before the server starts taking traffic.
func Connect(ctx context.Context, awsConfig aws.Config, table string) (*dynamodb.Client, error) {
	if table == "" {
		return nil, fmt.Errorf("set USERS_TABLE")
	}

	client := dynamodb.NewFromConfig(awsConfig)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := client.DescribeTable(pingCtx, &dynamodb.DescribeTableInput{
		TableName: aws.String(table),
	})
	if err != nil {
		return nil, fmt.Errorf("describe table %q: %w", table, err)
	}

	return client, nil
}
