package mcpserver

// CatalogFormatContract describes the YAML catalog format that LLM
// consumers should follow when editing the asset catalog.
const CatalogFormatContract = `# Asset Catalog Format Contract

The catalog is a YAML list. Every entry describes one static asset.

## Structure

` + "```" + `yaml
- info: Tree model used on the landing page   # REQUIRED
  url: ./assets/3d/tree.glb                   # REQUIRED, relative to the assets root
  author: Eray                                # REQUIRED
  name: tree.glb                              # OPTIONAL, defaults to the URL's last segment
  size: 3.63 KB                               # OPTIONAL, computed from the file
  dateModified: 2021-06-24 12:11:03 +0300     # OPTIONAL, last commit or file time
` + "```" + `

## Rules

1. **` + "`" + `info` + "`" + `, ` + "`" + `url` + "`" + ` and ` + "`" + `author` + "`" + ` are required.** A fill fails if any entry lacks them.
2. **Only the six keys above are allowed.** Unknown keys are rejected.
3. **URLs** use forward slashes and must name a regular file under the assets root.
4. **Computed keys** (` + "`" + `name` + "`" + `, ` + "`" + `size` + "`" + `, ` + "`" + `dateModified` + "`" + `) are only filled when absent.
   A value you set is kept as written.
5. **Key order** is preserved in the generated output; computed keys are appended
   in the order size, dateModified, name.
6. **Sizes** use 1024-based units with up to two decimals: Bytes, KB, MB, GB, TB, PB, EB, ZB, YB.
`
