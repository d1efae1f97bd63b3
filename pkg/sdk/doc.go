// Package shopsearch embeds the product catalog and its search in a Go program,
// without the HTTP server.
//
// The client runs the same use cases as the API: products are stored in Postgres
// (pgvector) or in memory, queries go through the embedding provider when one is
// configured and fall back to keyword matching when it is not, or when its quota
// runs out.
//
//	client, _ := shopsearch.New(ctx,
//	    shopsearch.WithPostgres(os.Getenv("DATABASE_DSN")),
//	    shopsearch.WithMigrations(),
//	    shopsearch.WithEmbedder(myEmbedder),
//	)
//	defer client.Close()
//
//	p, _ := client.Products().Create(ctx, shopsearch.NewProduct{
//	    Name: "Desk lamp", Description: "Warm LED light", Price: 19.99,
//	})
//	res, _ := client.Search(ctx, "reading light", 10)
//	for _, hit := range res.Hits {
//	    fmt.Println(hit.Product.Name, res.Source)
//	}
package shopsearch
