package service

import (
	"context"
	"testing"
)

func TestDescribeImage_ParsesDescription(t *testing.T) {
	server, client := newFakeAIServer(t, `{"base_query": "blue-running-shoes-with-mesh"}`)
	defer server.Close()

	analyzer := NewImageAnalyzer(client)
	desc, err := analyzer.DescribeImage(context.Background(), []byte{0xff, 0xd8, 0xff})
	if err != nil {
		t.Fatalf("DescribeImage failed: %v", err)
	}
	if desc != "blue-running-shoes-with-mesh" {
		t.Errorf("Unexpected description: %q", desc)
	}
}

func TestDescribeImage_EmptyImage(t *testing.T) {
	server, client := newFakeAIServer(t, `{"base_query": "anything"}`)
	defer server.Close()

	analyzer := NewImageAnalyzer(client)
	if _, err := analyzer.DescribeImage(context.Background(), nil); err == nil {
		t.Fatal("Expected an error for empty image data")
	}
}

func TestDescribeImage_MissingDescription(t *testing.T) {
	server, client := newFakeAIServer(t, `{"base_query": ""}`)
	defer server.Close()

	analyzer := NewImageAnalyzer(client)
	if _, err := analyzer.DescribeImage(context.Background(), []byte{0xff}); err == nil {
		t.Fatal("Expected an error when the model returns no description")
	}
}
