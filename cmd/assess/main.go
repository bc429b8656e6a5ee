// Command assess audits the articles collection for media-URL recoverability:
// bucket A articles already carry explicit externalLinks, bucket B have no
// externalLinks but URLs recoverable from current or legacy media fields,
// bucket C have no URL data at all.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"go.mongodb.org/mongo-driver/bson"

	"nuggets/internal/db"
	"nuggets/internal/media"
	"nuggets/internal/nugget"
)

func main() {
	mongoURI := flag.String("mongo", "mongodb://localhost:27017", "MongoDB connection URI")
	dbName := flag.String("db", "nuggetsdb", "database name")
	verbose := flag.Bool("v", false, "list bucket B/C article ids")
	flag.Parse()

	logger := log.New(os.Stderr, "[assess] ", log.LstdFlags)

	ctx := context.Background()

	client, err := db.ConnectMongo(ctx, *mongoURI)
	if err != nil {
		logger.Fatalf("failed to connect to db: %v", err)
	}
	defer client.Disconnect(ctx)

	col := client.Database(*dbName).Collection("articles")

	cursor, err := col.Find(ctx, bson.M{})
	if err != nil {
		logger.Fatalf("failed to query articles: %v", err)
	}
	defer cursor.Close(ctx)

	var (
		bucketA, bucketB, bucketC int
		total                     int
		withDuplicateImages       int
		sourceTotals              = make(map[media.URLSource]int)
	)

	for cursor.Next(ctx) {
		var a nugget.Article
		if err := cursor.Decode(&a); err != nil {
			logger.Printf("skipping undecodable document: %v", err)
			continue
		}
		total++

		extracted := media.ExtractAllURLs(&a.Article)
		for source, n := range media.URLCountsBySource(extracted) {
			sourceTotals[source] += n
		}

		if report := media.DetectDuplicateImages(a.Images); len(report.Duplicates) > 0 {
			withDuplicateImages++
			if *verbose {
				for _, d := range report.Duplicates {
					fmt.Printf("dup %s [%s] %s ~ %s\n", a.ID.Hex(), d.Kind, d.Original, d.Duplicate)
				}
			}
		}

		switch {
		case len(a.ExternalLinks) > 0:
			bucketA++
		case len(extracted) > 0:
			bucketB++
			if *verbose {
				fmt.Printf("B %s (%d recoverable)\n", a.ID.Hex(), len(extracted))
			}
		default:
			bucketC++
			if *verbose {
				fmt.Printf("C %s\n", a.ID.Hex())
			}
		}
	}
	if err := cursor.Err(); err != nil {
		logger.Fatalf("cursor error: %v", err)
	}

	fmt.Printf("articles scanned: %d\n", total)
	fmt.Printf("bucket A (has externalLinks):    %d\n", bucketA)
	fmt.Printf("bucket B (recoverable from URL fields): %d\n", bucketB)
	fmt.Printf("bucket C (no URL data):          %d\n", bucketC)
	fmt.Printf("articles with duplicate images:  %d\n", withDuplicateImages)
	fmt.Println("extracted URLs by source:")
	for _, source := range []media.URLSource{
		media.SourceFieldPrimaryMedia,
		media.SourceFieldSupportingMedia,
		media.SourceFieldMedia,
		media.SourceFieldPreviewMetadata,
		media.SourceFieldImages,
	} {
		fmt.Printf("  %-22s %d\n", source, sourceTotals[source])
	}
}
