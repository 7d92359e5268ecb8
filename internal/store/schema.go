package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	postsTableName = "posts"
	metaTableName  = "post_meta"
)

var (
	// postsColumns holds the content items (only fonts for now).
	postsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "kind", Type: field.TypeString, Size: 20, Default: "font"},
		{Name: "title", Type: field.TypeString},
		{Name: "status", Type: field.TypeString, Size: 20, Default: "draft"},
		{Name: "menu_order", Type: field.TypeInt, Default: 0},
		{Name: "author_id", Type: field.TypeInt, Default: 0},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
		{Name: "content", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	postsTable = &schema.Table{
		Name:       postsTableName,
		Columns:    postsColumns,
		PrimaryKey: []*schema.Column{postsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "post_kind_status", Columns: []*schema.Column{postsColumns[1], postsColumns[3]}},
		},
	}

	// metaColumns holds the per-item key/value metadata.
	metaColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "meta_key", Type: field.TypeString},
		{Name: "meta_value", Type: field.TypeString, Size: 2147483647},
		{Name: "post_id", Type: field.TypeInt},
	}
	metaTable = &schema.Table{
		Name:       metaTableName,
		Columns:    metaColumns,
		PrimaryKey: []*schema.Column{metaColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "post_meta_posts_meta",
				Columns:    []*schema.Column{metaColumns[3]},
				RefColumns: []*schema.Column{postsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "postmeta_post_id_meta_key", Unique: true, Columns: []*schema.Column{metaColumns[3], metaColumns[1]}},
		},
	}

	tables = []*schema.Table{postsTable, metaTable}
)

func init() {
	metaTable.ForeignKeys[0].RefTable = postsTable
}
