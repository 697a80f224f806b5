package shopify

// GraphQL documents sent to the Admin API. Variables are bound per call;
// the documents themselves are fixed.

// lineItemPageSize is the embedded line item page on order queries.
// Orders with more line items than this are completed via PullOrderLines.
const lineItemPageSize = 100

// variantProbeSize bounds the variants read per product when deriving
// collection availability.
const variantProbeSize = 100

const queryPaidOrders = `
query PaidOrders($query: String!, $first: Int!, $after: String, $lineFirst: Int!) {
  orders(first: $first, after: $after, query: $query, sortKey: CREATED_AT) {
    pageInfo { hasNextPage endCursor }
    nodes {
      id
      name
      createdAt
      currencyCode
      lineItems(first: $lineFirst) {
        pageInfo { hasNextPage endCursor }
        nodes {
          id
          title
          quantity
          discountedTotalSet { shopMoney { amount } }
          product { id title vendor createdAt }
          variant { id title sku selectedOptions { name value } }
        }
      }
    }
  }
}`

const queryOrderLines = `
query OrderLines($id: ID!, $first: Int!, $after: String) {
  order(id: $id) {
    lineItems(first: $first, after: $after) {
      pageInfo { hasNextPage endCursor }
      nodes {
        id
        title
        quantity
        discountedTotalSet { shopMoney { amount } }
        product { id title vendor createdAt }
        variant { id title sku selectedOptions { name value } }
      }
    }
  }
}`

const querySoldUnits = `
query SoldUnits($query: String!, $first: Int!, $after: String) {
  orders(first: $first, after: $after, query: $query) {
    pageInfo { hasNextPage endCursor }
    nodes {
      lineItems(first: 100) {
        nodes {
          quantity
          product { id }
        }
      }
    }
  }
}`

const queryCollections = `
query Collections($first: Int!, $after: String) {
  collections(first: $first, after: $after, sortKey: TITLE) {
    pageInfo { hasNextPage endCursor }
    nodes {
      id
      title
      handle
      productsCount { count }
    }
  }
}`

const queryCollectionProducts = `
query CollectionProducts($id: ID!, $first: Int!, $after: String, $variantFirst: Int!) {
  collection(id: $id) {
    products(first: $first, after: $after) {
      pageInfo { hasNextPage endCursor }
      nodes {
        id
        title
        variants(first: $variantFirst) {
          nodes { availableForSale }
        }
      }
    }
  }
}`

const queryVariantStock = `
query VariantStock($first: Int!, $after: String) {
  productVariants(first: $first, after: $after) {
    pageInfo { hasNextPage endCursor }
    nodes {
      id
      title
      sku
      price
      inventoryQuantity
      selectedOptions { name value }
      inventoryItem { unitCost { amount } }
      product { id title vendor createdAt }
    }
  }
}`

// queryVariantAvailability reads available-to-sell per location via the
// quantity names API.
const queryVariantAvailability = `
query VariantAvailability($ids: [ID!]!) {
  nodes(ids: $ids) {
    ... on ProductVariant {
      id
      inventoryItem {
        inventoryLevels(first: 25) {
          nodes {
            quantities(names: ["available"]) { name quantity }
          }
        }
      }
    }
  }
}`

// queryVariantAvailabilityLegacy is the fallback shape for API versions
// that reject the quantities argument.
const queryVariantAvailabilityLegacy = `
query VariantAvailabilityLegacy($ids: [ID!]!) {
  nodes(ids: $ids) {
    ... on ProductVariant {
      id
      inventoryQuantity
    }
  }
}`

const mutationReorderCollection = `
mutation ReorderCollection($id: ID!, $moves: [MoveInput!]!) {
  collectionReorderProducts(id: $id, moves: $moves) {
    job { id done }
    userErrors { field message }
  }
}`

const queryJob = `
query JobPoll($id: ID!) {
  job(id: $id) { id done }
}`
