/*
Package config loads the configuration of a vecmigrate run.

Settings are layered, later sources winning:

 1. DefaultConfig
 2. a YAML file (--config)
 3. a dotenv file, .env by default
 4. the process environment
 5. command line flags, applied by cmd/vecmigrate

Every field carries a yaml and an env tag. A minimal file:

	weaviate:
	  endpoint: http://weaviate:8080
	  api_key: secret
	migration:
	  collection: Vector_index_abc_Node
	  backup_id: dify-backup-before-upgrade
	  verify: true
	checkpoint:
	  backend: file
	  dir: /var/lib/vecmigrate

The same through the environment:

	WEAVIATE_ENDPOINT=http://weaviate:8080
	WEAVIATE_API_KEY=secret
	MIGRATION_COLLECTION=Vector_index_abc_Node
	MIGRATION_BACKUP_ID=dify-backup-before-upgrade

FXModule hands each section to its package's fx module.
*/
package config
