package aql

// Attributes stripped from default and read entries by the lighter-weight variants.
var DocumentUnsetFields = []string{"description", "docID", "image", "summary", "url"}

// Attributes stripped from watch entries by the lighter-weight variants.
var WatchUnsetFields = []string{"description", "image", "url", "videoID"}

// SimilarityUnset walks outbound similarity edges of one collection and keeps
// neighbours under the threshold, stripped of heavy attributes.
const SimilarityUnset = `
FOR article IN Article
  FILTER article._key == @key
  FOR v, e, p IN @min_depth..@max_depth OUTBOUND article GRAPH @graph
    FILTER SPLIT(e._id, '/')[0] == @edge_collection && v._id != article._id
    FILTER e.sim_value < @sim_threshold
    RETURN DISTINCT {
      articleID: v._key,
      category: v.category,
      subcategory: v.subcategory,
      default: UNSET(v.default, @document_unset),
      default_image: v.default_image,
      read: [UNSET(v.read[0], @document_unset)],
      watch: [UNSET(v.watch[0], @watch_unset)],
      tag: v.source_tags[0]
    }`

// SimilarityFull is SimilarityUnset with whole sub-objects and every source tag.
const SimilarityFull = `
FOR article IN Article
  FILTER article._key == @key
  FOR v, e, p IN @min_depth..@max_depth OUTBOUND article GRAPH @graph
    FILTER SPLIT(e._id, '/')[0] == @edge_collection && v._id != article._id
    FILTER e.sim_value < @sim_threshold
    RETURN DISTINCT {
      articleID: v._key,
      category: v.category,
      subcategory: v.subcategory,
      default: v.default,
      default_image: v.default_image,
      read: [v.read[0]],
      watch: [v.watch[0]],
      source_tags: v.source_tags
    }`

// PathCountUnset goes through the article's Document: out along term-frequency
// edges, back in to documents of the same source, counts paths per target url,
// then re-joins articles published inside the window.
const PathCountUnset = `
FOR article IN Article
  FILTER article._key == @key
  LET query_epoch = article.default.epoch_time
  LET related_docs = (
    FOR doc IN Document
      FILTER doc.url == article.default.url
      FOR v1, e1, p1 IN @min_depth..@max_depth OUTBOUND doc GRAPH @graph
        FILTER e1.ne_tf > 0 || e1.np_tf > 0 || e1.ep_tf > 0
        FOR v2, e2, p2 IN @min_depth..@max_depth INBOUND v1 GRAPH @graph
          FILTER v2._id != doc._id && v2.source == doc.source
          COLLECT target_url = p2.vertices[1].url WITH COUNT INTO no_of_paths
          SORT no_of_paths DESC
          LIMIT @limit
          RETURN { url: target_url, no_of_paths: no_of_paths }
  )
  FOR doc1 IN related_docs
    FOR article1 IN Article
      FILTER article1.default.url == doc1.url
      FILTER TO_NUMBER(article1.default.epoch_time) > TO_NUMBER(query_epoch) - TO_NUMBER(@window)
        && TO_NUMBER(article1.default.epoch_time) < TO_NUMBER(query_epoch) + TO_NUMBER(@window)
      SORT doc1.no_of_paths DESC
      RETURN {
        articleID: article1._key,
        category: article1.category,
        subcategory: article1.subcategory,
        default: UNSET(article1.default, @document_unset),
        default_image: article1.default_image,
        read: [UNSET(article1.read[0], @document_unset)],
        watch: [UNSET(article1.watch[0], @watch_unset)],
        tag: article1.source_tags[0],
        no_of_paths: doc1.no_of_paths
      }`

// CategoryPathsByOrigin counts paths to same-category articles inside the
// window, following only edges whose origin intersects @origins.
const CategoryPathsByOrigin = `
LET graph_rel_articles = (
  FOR article IN Article
    FILTER article._key == @key
    FOR v, e, p IN @min_depth..@max_depth ANY article GRAPH @graph
      FILTER LENGTH(INTERSECTION(@origins, e.origin)) > 0
        && @category IN v.category
        && v._key != @key
        && TO_NUMBER(v.default.epoch_time) > TO_NUMBER(article.default.epoch_time) - TO_NUMBER(@window)
        && TO_NUMBER(v.default.epoch_time) < TO_NUMBER(article.default.epoch_time) + TO_NUMBER(@window)
      COLLECT aid = v._id WITH COUNT INTO no_of_paths
      RETURN DISTINCT { aid: aid, no_of_paths: no_of_paths }
)
FOR relart IN graph_rel_articles
  SORT relart.no_of_paths DESC
  FOR article IN Article
    FILTER article._id == relart.aid
    LIMIT @limit
    RETURN { article: article, no_of_paths: relart.no_of_paths }`

// CategoryPathsByEdgeOrigin is CategoryPathsByOrigin without caller origins.
// The origin filter compares each edge's origin with itself, so it only drops
// edges that carry no origin at all. Kept as deployed; do not "fix" without
// confirming the intended origin source.
const CategoryPathsByEdgeOrigin = `
LET graph_rel_articles = (
  FOR article IN Article
    FILTER article._key == @key
    FOR v, e, p IN @min_depth..@max_depth ANY article GRAPH @graph
      LET edge_origin = e.origin
      FILTER edge_origin != null && edge_origin != []
        && LENGTH(INTERSECTION(edge_origin, e.origin)) > 0
        && @category IN v.category
        && v._key != @key
        && TO_NUMBER(v.default.epoch_time) > TO_NUMBER(article.default.epoch_time) - TO_NUMBER(@window)
        && TO_NUMBER(v.default.epoch_time) < TO_NUMBER(article.default.epoch_time) + TO_NUMBER(@window)
      COLLECT aid = v._id WITH COUNT INTO no_of_paths
      RETURN DISTINCT { aid: aid, no_of_paths: no_of_paths }
)
FOR relart IN graph_rel_articles
  SORT relart.no_of_paths DESC
  FOR article IN Article
    FILTER article._id == relart.aid
    LIMIT @limit
    RETURN { article: article, no_of_paths: relart.no_of_paths }`

// EntityRelated pivots on Entity nodes named like the top terms and walks
// inbound to the articles that mention them.
const EntityRelated = `
FOR term IN @top_terms
  FOR entity IN Entity
    FILTER entity.name == term
    FOR v, e, p IN @min_depth..@max_depth INBOUND entity GRAPH @graph
      FILTER @category IN v.category
      FILTER v._key != @key
        && TO_NUMBER(v.default.epoch_time) > TO_NUMBER(@query_epoch) - TO_NUMBER(@window)
        && TO_NUMBER(v.default.epoch_time) < TO_NUMBER(@query_epoch) + TO_NUMBER(@window)
      RETURN DISTINCT {
        articleID: v._key,
        category: v.category,
        subcategory: v.subcategory,
        default: v.default,
        default_image: v.default_image,
        read: [v.read[0]],
        watch: [v.watch[0]],
        source_tags: v.source_tags
      }`

// DocumentSimilarity resolves the article that reads @url and returns it with
// every article reachable through the edge collection.
const DocumentSimilarity = `
LET qarticle = (
  FOR article IN Article
    FILTER @url IN article.read[*].url
    RETURN article
)
LET related_articles = (
  FOR article1 IN Article
    FILTER article1._id == qarticle[0]._id
    FOR v, e, p IN @min_depth..@max_depth ANY article1 GRAPH @graph
      FILTER SPLIT(e._id, '/')[0] == @edge_collection && v._id != article1._id
      RETURN v
)
RETURN { qarticle: qarticle, related_articles: related_articles }`

// DocumentPaths groups traversal paths by their third vertex and returns the
// least-connected articles first.
const DocumentPaths = `
FOR article IN Article
  FILTER article._id == @id
  LET related_articles = (
    FOR v1, e1, p1 IN @min_depth..@max_depth ANY article GRAPH @graph
      FILTER SPLIT(e1._id, '/')[0] == @edge_collection && v1._id != article._id
      COLLECT artid = p1.vertices[2]._id WITH COUNT INTO no_of_paths
      SORT no_of_paths ASC
      LIMIT @limit
      RETURN { articleid: artid, no_of_paths: no_of_paths }
  )
  FOR result IN related_articles
    FOR article1 IN Article
      FILTER article1._id == result.articleid
      RETURN { related_article: article1, no_of_paths: result.no_of_paths }`
